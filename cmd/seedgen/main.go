// Command seedgen generates a seed data file with fake users and chats.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/google/uuid"

	"quantum/internal/models"
	"quantum/internal/seedclient"
)

func main() {
	var (
		out   = flag.String("out", "data/quantum.json", "output file path")
		users = flag.Int("users", 8, "number of users to generate")
		seed  = flag.Int64("seed", 0, "random seed (0 = time-based)")
	)
	flag.Parse()

	if *seed == 0 {
		*seed = time.Now().UnixNano()
	}
	faker := gofakeit.New(*seed)

	doc := seedclient.Document{
		Users: make([]models.User, 0, *users),
		Chats: make([]models.Chat, 0, *users-1),
	}

	for i := 0; i < *users; i++ {
		handle := "@" + strings.ToLower(faker.Username())
		if len(handle) > 21 {
			handle = handle[:21]
		}
		doc.Users = append(doc.Users, models.User{
			Username:    handle,
			DisplayName: faker.Name(),
			Avatar:      fmt.Sprintf("https://i.pravatar.cc/150?u=%s", handle[1:]),
			Bio:         faker.HipsterSentence(8),
			IsVerified:  faker.Bool(),
			Role:        models.RoleUser,
		})
	}

	// One chat between the first user and each of the others, with a short
	// pre-populated history.
	if len(doc.Users) > 1 {
		me := doc.Users[0].Username
		for _, other := range doc.Users[1:] {
			chat := models.Chat{
				ID:           uuid.NewString(),
				Participants: []string{me, other.Username},
			}
			count := faker.Number(2, 6)
			ts := time.Now().Add(-time.Duration(faker.Number(1, 72)) * time.Hour)
			for i := 0; i < count; i++ {
				sender := me
				if i%2 == 0 {
					sender = other.Username
				}
				msg := models.Message{
					ID:        uuid.NewString(),
					Text:      faker.HipsterSentence(faker.Number(3, 10)),
					Sender:    sender,
					Timestamp: ts.UnixMilli(),
					Type:      models.MessageTypeText,
				}
				chat.Messages = append(chat.Messages, msg)
				chat.LastMessage = &msg
				ts = ts.Add(time.Duration(faker.Number(1, 30)) * time.Minute)
			}
			doc.Chats = append(doc.Chats, chat)
		}
	}

	raw, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		log.Fatalf("Failed to encode seed data: %v", err)
	}
	if err := os.WriteFile(*out, raw, 0o644); err != nil {
		log.Fatalf("Failed to write %s: %v", *out, err)
	}
	log.Printf("Wrote %d users and %d chats to %s", len(doc.Users), len(doc.Chats), *out)
}
