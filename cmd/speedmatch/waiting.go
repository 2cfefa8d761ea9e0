package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/sirupsen/logrus"

	"speedmatch-client/internal/config"
	"speedmatch-client/internal/storage"
	"speedmatch-client/pkg/api"
	"speedmatch-client/pkg/lobby"
)

// readLines feeds stdin lines into a channel so the UI loop can select on
// them alongside network updates
func readLines() <-chan string {
	lines := make(chan string)
	go func() {
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			lines <- strings.TrimSpace(scanner.Text())
		}
		close(lines)
	}()

	return lines
}

// waitForGame runs the waiting room until a game starts. It returns the game
// ID, or "" if the player left the room
func waitForGame(client *api.Client, identity storage.Identity, room *api.Room, chat *lobby.Chat, lines <-chan string) (string, error) {
	l := lobby.New(client, identity.PlayerID)

	watcher := l.Watch(room.RoomID, config.Instance().RoomPollInterval())
	defer watcher.Stop()

	// a nil chat leaves chatMessages nil, which never delivers
	var chatMessages <-chan api.ChatMessage
	if chat != nil {
		chatMessages = chat.Messages()
	}

	printMembers(room)

	for {
		select {
		case u, open := <-watcher.Updates():
			if !open {
				return "", errors.New("waiting room closed unexpectedly")
			}

			if u.Err != nil {
				if u.Fatal {
					return "", u.Err
				}

				fmt.Printf("! %v (will keep trying)\n", u.Err)
				continue
			}

			if membersChanged(room, u.Room) {
				printMembers(u.Room)
			}
			room = u.Room

			if room.GameID != "" {
				fmt.Println("Game on!")
				return room.GameID, nil
			}

			if room.Status != api.RoomWaiting {
				return "", fmt.Errorf("room is no longer open (%s)", room.Status)
			}

		case msg, open := <-chatMessages:
			if !open {
				chatMessages = nil
				continue
			}

			fmt.Printf("[%s] %s\n", msg.Name, msg.Text)

		case line, open := <-lines:
			if !open {
				return "", nil
			}

			done, gameID, err := handleWaitingCommand(l, room, identity, chat, line)
			if done || err != nil {
				return gameID, err
			}
		}
	}
}

func handleWaitingCommand(l *lobby.Lobby, room *api.Room, identity storage.Identity, chat *lobby.Chat, line string) (done bool, gameID string, err error) {
	switch {
	case line == "":
		return false, "", nil

	case line == "/quit":
		if err := l.Leave(context.Background(), room.RoomID); err != nil {
			logrus.WithError(err).Warn("could not leave room cleanly")
		}
		return true, "", nil

	case line == "/ready":
		member, _ := room.Member(identity.PlayerID)
		updated, err := l.SetReady(context.Background(), room.RoomID, !member.Ready)
		if err != nil {
			fmt.Printf("! %v\n", err)
			return false, "", nil
		}
		printMembers(updated)
		return false, "", nil

	case line == "/start":
		created, err := l.StartGame(context.Background(), room)
		if err != nil {
			fmt.Printf("! %v\n", err)
			return false, "", nil
		}
		fmt.Println("Game on!")
		return true, created.GameID, nil

	case strings.HasPrefix(line, "/"):
		fmt.Println("commands: /ready, /start (host), /quit; anything else is chat")
		return false, "", nil

	default:
		if chat == nil || !chat.Send(line) {
			fmt.Println("! chat unavailable")
		}
		return false, "", nil
	}
}

func printMembers(room *api.Room) {
	fmt.Printf("Players in %q:\n", room.Name)
	for _, m := range room.Members {
		ready := " "
		if m.Ready {
			ready = "✓"
		}

		host := ""
		if m.PlayerID == room.HostID {
			host = " (host)"
		}

		fmt.Printf("  [%s] %s%s\n", ready, m.Name, host)
	}
}

func membersChanged(a, b *api.Room) bool {
	if a == nil || b == nil || len(a.Members) != len(b.Members) {
		return true
	}

	for i := range a.Members {
		if a.Members[i] != b.Members[i] {
			return true
		}
	}

	return false
}
