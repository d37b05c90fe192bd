package main

import (
	"flag"
	"fmt"
	"log"
	"math/rand"

	"github.com/benderchat/bender/internal/client"
)

var writers = []struct {
	username string
	author   string
	bio      string
}{
	{"ada", "Ada", "Writes about compilers and the occasional sourdough"},
	{"brian", "Brian", "Backend engineer, part-time typographer"},
	{"chandra", "Chandra", "Notes from the on-call rotation"},
	{"dmitri", "Dmitri", "Databases, mostly"},
}

var articles = []struct {
	title    string
	subtitle string
	content  string
	tags     []string
}{
	{"Hello, world", "A first post", "# Hello\n\nThis blog is **live**.", []string{"meta"}},
	{"Why I stopped using ORMs", "", "Plain SQL is *fine*.\n\n- fewer surprises\n- easier reviews", []string{"databases", "opinion"}},
	{"A week of on-call", "What broke and why", "Monday started with a pager at 3am.", []string{"ops"}},
	{"Markdown tables", "", "| a | b |\n|---|---|\n| 1 | 2 |", []string{"markdown"}},
	{"Reading list", "Autumn edition", "1. Designing Data-Intensive Applications\n2. The Go Programming Language", []string{"books"}},
	{"Sourdough and schedulers", "", "Both need patience and a good timer.", []string{"cooking", "concurrency"}},
	{"Untitled draft", "", "Nothing to see yet.", nil},
}

func main() {
	baseURL := flag.String("url", "http://localhost:5000", "Bender server URL")
	password := flag.String("password", "bender-demo", "Password for the demo accounts")
	flag.Parse()

	log.Printf("Seeding demo content at %s...\n", *baseURL)

	helper := client.NewTestHelper(*baseURL)

	var clients []*client.Client
	var userIDs []int64
	for _, w := range writers {
		c, session, err := helper.CreateLoggedInClient(w.username, *password)
		if err != nil {
			log.Fatalf("sign up %s: %v", w.username, err)
		}
		log.Printf("✓ Signed up: %s (user %d)", w.username, session.UserID)
		clients = append(clients, c)
		userIDs = append(userIDs, session.UserID)
	}

	skins, err := clients[0].Skins()
	if err != nil {
		log.Fatalf("list skins: %v", err)
	}
	if len(skins) == 0 {
		log.Fatalf("no skins found: run 'bender seed' against the server database first")
	}

	created := 0
	for _, a := range articles {
		idx := rand.Intn(len(clients))
		w := writers[idx]
		skin := skins[rand.Intn(len(skins))]

		err := clients[idx].CreateArticle(client.ArticleInput{
			UserID:            userIDs[idx],
			Title:             a.title,
			Subtitle:          a.subtitle,
			Content:           a.content,
			SkinID:            skin.ID,
			Author:            w.author,
			AuthorDescription: w.bio,
			Tags:              a.tags,
		})
		if err != nil {
			log.Printf("✗ Failed to create article: %v", err)
			continue
		}
		created++
		log.Printf("✓ Created: %s (by %s, skin %s)", a.title, w.username, skin.Name)
	}

	// Promote the first writer so the admin endpoints have something to show.
	if err := clients[0].SetAdmin(userIDs[0], true); err != nil {
		log.Printf("✗ Failed to promote %s: %v", writers[0].username, err)
	} else {
		log.Printf("✓ Promoted %s to admin", writers[0].username)
	}

	fmt.Println("\n=== Seed Complete ===")
	fmt.Printf("Users:    %d\n", len(writers))
	fmt.Printf("Articles: %d\n", created)
	fmt.Println("\nAPI at:", *baseURL+"/api/articles")
}
