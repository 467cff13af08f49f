// Package httpapp provides the HTTP server for Quill.
//
//	@title						Quill API
//	@version					1.0
//	@description				A blogging platform backend with OTP-verified registration.
//	@description
//	@description				## Authentication Flow
//	@description
//	@description				Accounts are created in three steps:
//	@description
//	@description				### Step 1: Register
//	@description				Submit the registration form. Nothing is persisted yet; a 6-digit OTP
//	@description				is emailed to you and the form is held for 10 minutes.
//	@description				```bash
//	@description				curl -X POST /api/auth/register -d '{"first_name":"Ada","last_name":"Lovelace","email":"ada@example.com","phone":"5551234","password":"...","confirm_password":"...","dob":"1990-12-10","preferences":["Technology"]}'
//	@description				```
//	@description
//	@description				### Step 2: Verify
//	@description				Confirm the code from your inbox. This creates the account.
//	@description				```bash
//	@description				curl -X POST /api/auth/verify-otp -d '{"email":"ada@example.com","otp":"123456"}'
//	@description				```
//	@description
//	@description				### Step 3: Log in
//	@description				Exchange your credentials for a bearer token, valid for 24 hours.
//	@description				```bash
//	@description				curl -X POST /api/auth/login -d '{"email":"ada@example.com","password":"..."}'
//	@description				# Returns: {"token": "...", "user": {...}}
//	@description				```
//	@description
//	@description				Include the token on every protected request:
//	@description				```bash
//	@description				curl -X POST /api/articles -H "Authorization: Bearer TOKEN" -d '{...}'
//	@description				```
//
//	@contact.name				Quill
//	@license.name				MIT
//
//	@host						localhost:8080
//	@BasePath					/
//
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Bearer token from /api/auth/login
//
//	@tag.name					Auth
//	@tag.description			Registration with OTP email verification, login, logout, and password reset.
//
//	@tag.name					Users
//	@tag.description			Profile and password management for the authenticated user.
//
//	@tag.name					Articles
//	@tag.description			Publish, browse, edit, and delete articles. Cover images upload as multipart form data.
//
//	@tag.name					Reactions
//	@tag.description			Like, dislike, or block articles. A like removes an existing dislike and vice versa.
//
//	@tag.name					Stats
//	@tag.description			Site-wide counters.
package httpapp
