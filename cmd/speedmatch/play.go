package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"speedmatch-client/internal/config"
	"speedmatch-client/internal/storage"
	"speedmatch-client/pkg/api"
	"speedmatch-client/pkg/deck"
	"speedmatch-client/pkg/game"
)

// playGame runs the polled game view until the game reaches a terminal
// status, then shows the result screen
func playGame(client *api.Client, cfg config.Config, identity storage.Identity, gameID string, lines <-chan string) error {
	for {
		err := runGame(client, cfg, identity, gameID, lines)
		if err == nil {
			return nil
		}

		if !api.AsError(err).Fatal() {
			return err
		}

		// blocking error view: retry or return to the lobby
		fmt.Printf("! %v\n", err)
		fmt.Println("Type /retry to try again or anything else to return to the lobby.")
		line, open := <-lines
		if !open || line != "/retry" {
			return nil
		}
	}
}

func runGame(client *api.Client, cfg config.Config, identity storage.Identity, gameID string, lines <-chan string) error {
	syncer := game.NewSyncer(client, gameID, identity.PlayerID, cfg.GamePollInterval())
	dispatcher := game.NewDispatcher(client, syncer, gameID, identity.PlayerID)

	syncer.Start()
	defer syncer.Stop()

	for {
		select {
		case u, open := <-syncer.Updates():
			if !open {
				// the terminal update was already handled before the close
				return nil
			}

			if u.Err != nil {
				if u.Fatal {
					return u.Err
				}

				fmt.Printf("! %v (still polling)\n", u.Err)
				continue
			}

			dispatcher.Reconcile(u.State)
			render(u.State, dispatcher.Selection(), identity.PlayerID)

			if u.State.Terminal() {
				return showResult(client, u.State, identity.PlayerID, lines)
			}

		case line, open := <-lines:
			if !open {
				return nil
			}

			if line == "/quit" {
				return nil
			}

			handleGameCommand(dispatcher, syncer, identity.PlayerID, line)
		}
	}
}

func handleGameCommand(d *game.Dispatcher, s *game.Syncer, playerID string, line string) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return
	}

	switch fields[0] {
	case "play":
		if len(fields) < 2 {
			fmt.Println("usage: play <card> [pile], e.g. play 6s or play 9s 1")
			return
		}

		card, err := deck.ParseCard(fields[1])
		if err != nil {
			fmt.Printf("! %v\n", err)
			return
		}

		piles, err := d.Select(context.Background(), card)
		if err != nil {
			fmt.Printf("! %v\n", err)
			return
		}

		if len(piles) > 1 {
			if len(fields) < 3 {
				fmt.Printf("%s fits piles %v; play %s <pile> to choose\n", card, piles, fields[1])
				return
			}

			target, err := strconv.Atoi(fields[2])
			if err != nil {
				fmt.Printf("! %q is not a pile index\n", fields[2])
				return
			}

			if err := d.ChoosePile(context.Background(), target); err != nil {
				fmt.Printf("! %v\n", err)
				return
			}
		}

	case "draw":
		if err := d.Draw(context.Background()); err != nil {
			fmt.Printf("! %v\n", err)
		}

	case "skip":
		if err := d.Skip(context.Background()); err != nil {
			fmt.Printf("! %v\n", err)
		}

	case "cancel":
		d.Cancel()

	case "help":
		fmt.Println("commands: play <card> [pile], draw, skip, cancel, /quit")

	default:
		fmt.Printf("unknown command %q (try help)\n", fields[0])
	}

	if state := s.State(); state != nil {
		render(state, d.Selection(), playerID)
	}
}

func render(state *api.GameState, sel game.Selection, playerID string) {
	fmt.Println()
	fmt.Printf("Piles:  [0] %s   [1] %s   deck: %d\n",
		pileString(state.FieldPiles, 0), pileString(state.FieldPiles, 1), state.DeckRemaining)

	for _, p := range state.Players {
		marker := "  "
		if p.PlayerID == state.CurrentPlayerID {
			marker = "▶ "
		}

		if p.PlayerID == playerID {
			fmt.Printf("%s%s (you): %s\n", marker, p.Name, handString(state, sel))
		} else {
			fmt.Printf("%s%s: %d cards\n", marker, p.Name, p.HandCount)
		}
	}

	if state.CurrentPlayerID == playerID {
		fmt.Println("Your turn.")
	}
}

func pileString(piles []deck.Card, i int) string {
	if i >= len(piles) {
		return "--"
	}

	return piles[i].String()
}

func handString(state *api.GameState, sel game.Selection) string {
	parts := make([]string, len(state.Hand))
	for i, c := range state.Hand {
		s := c.String()
		if game.Playable(c, state) {
			s += "*"
		}

		if sel.Phase != game.SelectionIdle && sel.Card.Equal(c) {
			s = "[" + s + "]"
		}

		parts[i] = s
	}

	return strings.Join(parts, " ")
}

func showResult(client *api.Client, state *api.GameState, playerID string, lines <-chan string) error {
	if state.Status == api.StatusAborted {
		fmt.Println("The game was aborted.")
		return nil
	}

	fetcher := game.NewResultFetcher(client, state.GameID)

	for {
		result, err := fetcher.Fetch(context.Background())
		if err != nil {
			fmt.Printf("! could not fetch the result: %v\n", err)
			fmt.Println("Type /retry to try again or anything else to quit.")
			line, open := <-lines
			if !open || line != "/retry" {
				return nil
			}
			continue
		}

		printResult(result, playerID)
		return nil
	}
}

func printResult(result *api.GameResult, playerID string) {
	fmt.Printf("\nFinal standings (%d turns, %ds):\n", result.TotalTurns, result.PlayTimeSeconds)
	for _, entry := range result.Ranking {
		you := ""
		if entry.PlayerID == playerID {
			you = " ← you"
		}

		fmt.Printf("  %d. %s - %d played, %d left%s\n",
			entry.Rank, entry.PlayerID, entry.CardsPlayed, entry.RemainingCards, you)
	}
}
