// Command seed fills a quill database with demo users, articles, and
// reactions for local development.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/sreesansree/Quill-Backend/internal/model"
	"github.com/sreesansree/Quill-Backend/internal/store/sqlite"
)

const demoPassword = "Quill-demo1"

var users = []struct {
	firstName, lastName, email, phone string
	dob                               string
	preferences                       []string
}{
	{"Ada", "Lovelace", "ada@example.com", "5550101", "1990-12-10", []string{"Technology", "Science"}},
	{"Grace", "Hopper", "grace@example.com", "5550102", "1988-12-09", []string{"Technology", "Education"}},
	{"Alan", "Turing", "alan@example.com", "5550103", "1992-06-23", []string{"Science", "Politics"}},
	{"Mary", "Shelley", "mary@example.com", "5550104", "1995-08-30", []string{"Entertainment", "Travel"}},
	{"Carl", "Sagan", "carl@example.com", "5550105", "1985-11-09", []string{"Science", "Food"}},
}

var articles = []struct {
	title, description, content, category string
	tags                                  []string
}{
	{"Getting Started with Sourdough", "A beginner's guide to your first loaf", "Flour, water, salt, and patience. Start your starter a week ahead...", "Food", []string{"baking", "guide"}},
	{"The James Webb Deep Field, Explained", "What those specks of light actually are", "Every smudge in the deep field image is a galaxy of billions of stars...", "Science", []string{"space", "astronomy"}},
	{"Why I Switched to Mechanical Keyboards", "RSI, key travel, and the joy of tactile feedback", "After a decade on laptop chiclets my wrists staged a protest...", "Technology", []string{"hardware", "opinion"}},
	{"A Weekend in Lisbon on a Budget", "Pasteis, trams, and miradouros", "Skip the tuk-tuks and take the 28 tram early in the morning...", "Travel", []string{"europe", "budget"}},
	{"Strength Training for Distance Runners", "Lifting twice a week without losing your legs", "The fear that lifting makes you slow is mostly myth...", "Sports", []string{"running", "fitness"}},
	{"Understanding Interest Rate Cycles", "What rising rates mean for small businesses", "When the central bank raises rates, borrowing cost flows downhill...", "Business", []string{"finance", "economy"}},
	{"Spaced Repetition Actually Works", "The evidence behind flashcard scheduling", "Cramming feels productive because recognition masquerades as recall...", "Education", []string{"learning", "memory"}},
	{"A Quiet Morning Routine", "Small rituals that anchor the day", "Before the phone comes on, the kettle goes on...", "Lifestyle", []string{"habits", "mindfulness"}},
}

func main() {
	dbPath := flag.String("db", "quill.db", "Database path")
	flag.Parse()

	st, err := sqlite.Open(*dbPath)
	if err != nil {
		log.Fatalf("failed to open db: %v", err)
	}
	defer st.Close()

	ctx := context.Background()

	hashed, err := bcrypt.GenerateFromPassword([]byte(demoPassword), bcrypt.DefaultCost)
	if err != nil {
		log.Fatalf("failed to hash password: %v", err)
	}

	var userIDs []int64
	for _, u := range users {
		dob, err := time.Parse("2006-01-02", u.dob)
		if err != nil {
			log.Fatalf("bad dob %q: %v", u.dob, err)
		}
		id, err := st.CreateUser(ctx, &model.User{
			FirstName:      u.firstName,
			LastName:       u.lastName,
			Email:          u.email,
			Phone:          u.phone,
			HashedPassword: string(hashed),
			DOB:            dob,
			Preferences:    u.preferences,
			CreatedAt:      time.Now(),
		})
		if err != nil {
			log.Printf("skipping user %s: %v", u.email, err)
			continue
		}
		userIDs = append(userIDs, id)
		fmt.Printf("✓ user %s %s (%s)\n", u.firstName, u.lastName, u.email)
	}
	if len(userIDs) == 0 {
		log.Fatal("no users created; is the database already seeded?")
	}

	var articleIDs []int64
	for i, a := range articles {
		author := userIDs[i%len(userIDs)]
		id, err := st.CreateArticle(ctx, &model.Article{
			Title:       a.title,
			Description: a.description,
			Content:     a.content,
			Tags:        a.tags,
			Category:    a.category,
			AuthorID:    author,
			CreatedAt:   time.Now().Add(-time.Duration(rand.Intn(72)) * time.Hour),
		})
		if err != nil {
			log.Printf("skipping article %q: %v", a.title, err)
			continue
		}
		articleIDs = append(articleIDs, id)
		fmt.Printf("✓ article %q\n", a.title)
	}

	reactions := 0
	for _, articleID := range articleIDs {
		for _, userID := range userIDs {
			if rand.Intn(3) != 0 {
				continue
			}
			kind := model.ReactionLike
			if rand.Intn(4) == 0 {
				kind = model.ReactionDislike
			}
			if err := st.SetReaction(ctx, articleID, userID, kind); err != nil {
				continue
			}
			reactions++
		}
	}
	fmt.Printf("✓ %d reactions\n", reactions)
	fmt.Printf("\nSeeded %d users and %d articles. All demo accounts use password %q.\n", len(userIDs), len(articleIDs), demoPassword)
}
