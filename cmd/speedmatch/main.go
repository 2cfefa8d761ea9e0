package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/badoux/checkmail"
	"github.com/sirupsen/logrus"
	"golang.org/x/term"

	"speedmatch-client/internal/config"
	"speedmatch-client/internal/storage"
	"speedmatch-client/internal/util"
	"speedmatch-client/pkg/api"
	"speedmatch-client/pkg/lobby"
)

// Version is the client version
var Version = "v0.0.0-dev"

var roomID = flag.String("room", "", "room to join; leave empty to create a new room")
var roomName = flag.String("room-name", "", "name for a newly created room")
var reRegister = flag.Bool("register", false, "register a new identity even if one is saved")

func main() {
	flag.Parse()
	setupLogger()

	if !term.IsTerminal(int(os.Stdin.Fd())) {
		logrus.Fatal("speedmatch is an interactive client and needs a terminal")
	}

	cfg := config.Instance()

	store, err := storage.NewFileStore(cfg.Storage.Path)
	if err != nil {
		logrus.WithError(err).Fatal("could not open identity store")
	}

	client := api.NewWithHTTPClient(cfg.API.BaseURL, &http.Client{Timeout: cfg.Timeout()})

	identity, err := loadOrRegister(client, store)
	if err != nil {
		logrus.WithError(err).Fatal("could not establish player identity")
	}

	fmt.Printf("Welcome back, %s (speedmatch %s)\n", identity.DisplayName, Version)

	room, chat, err := enterRoom(client, identity)
	if err != nil {
		logrus.WithError(err).Fatal("could not enter a room")
	}

	// one reader for the whole session; both views select on it
	lines := readLines()

	gameID, err := waitForGame(client, identity, room, chat, lines)
	if chat != nil {
		chat.Close()
	}
	if err != nil {
		logrus.WithError(err).Fatal("waiting room failed")
	}

	if gameID == "" {
		fmt.Println("Left the room. Bye!")
		return
	}

	if err := playGame(client, cfg, identity, gameID, lines); err != nil {
		logrus.WithError(err).Fatal("game ended with an error")
	}
}

func setupLogger() {
	if lvl := config.Instance().Log.Level; lvl != "" {
		level, err := logrus.ParseLevel(lvl)
		if err != nil {
			logrus.WithError(err).Fatal("could not parse level")
		}

		logrus.SetLevel(level)
	}

	if strings.ToLower(os.Getenv("LOG_FORMAT")) == "json" {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	}
}

func loadOrRegister(client *api.Client, store storage.Store) (storage.Identity, error) {
	if !*reRegister {
		identity, found, err := store.Identity()
		if err != nil {
			return storage.Identity{}, err
		}

		if found {
			return identity, nil
		}
	}

	name, err := getInput(fmt.Sprintf("Display name [%s]", util.GetRandomName()))
	if err != nil {
		return storage.Identity{}, err
	}

	if name == "" {
		name = util.GetRandomName()
	}

	email := getEmail()

	player, err := client.RegisterPlayer(context.Background(), name, email)
	if err != nil {
		return storage.Identity{}, err
	}

	identity := storage.Identity{
		PlayerID:    player.PlayerID,
		DisplayName: player.DisplayName,
		Email:       email,
	}

	if err := store.SaveIdentity(identity); err != nil {
		logrus.WithError(err).Warn("could not save identity; you will register again next time")
	}

	return identity, nil
}

func enterRoom(client *api.Client, identity storage.Identity) (*api.Room, *lobby.Chat, error) {
	l := lobby.New(client, identity.PlayerID)

	var room *api.Room
	var err error
	if *roomID == "" {
		name := *roomName
		if name == "" {
			name = fmt.Sprintf("%s's table", identity.DisplayName)
		}

		room, err = l.CreateRoom(context.Background(), name)
	} else {
		room, err = l.Join(context.Background(), *roomID)
	}

	if err != nil {
		return nil, nil, err
	}

	fmt.Printf("Room %q (%s) - waiting for players. Type to chat, /ready to toggle ready, /quit to leave.\n",
		room.Name, room.RoomID)

	chat, err := lobby.DialChat(client.BaseURL(), room.RoomID, identity.PlayerID)
	if err != nil {
		// chat is best-effort; the waiting room works without it
		logrus.WithError(err).Warn("room chat unavailable")
		chat = nil
	}

	return room, chat, nil
}

func getInput(prompt string) (string, error) {
	fmt.Printf("%s: ", prompt)
	reader := bufio.NewReader(os.Stdin)
	str, err := reader.ReadString('\n')
	if err != nil {
		return "", err
	}

	return strings.TrimRight(str, "\r\n"), nil
}

func getEmail() string {
	for {
		str, err := getInput("Email (optional)")
		if err != nil {
			logrus.WithError(err).Warn("could not read email")
			return ""
		}

		if str == "" {
			return ""
		}

		if err := checkmail.ValidateFormat(str); err != nil {
			_, _ = fmt.Fprintln(os.Stderr, err)
			continue
		}

		return str
	}
}
