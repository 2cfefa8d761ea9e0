package util

import (
	"fmt"
	"math/rand"
	"time"
)

var random = rand.New(rand.NewSource(time.Now().UnixNano())) // nolint:gosec

var adjectives = []string{
	"Fast", "Quick", "Speedy", "Snappy", "Swift", "Blazing", "Rapid", "Brisk", "Nimble", "Zippy",
	"Red", "Blue", "Green", "Orange", "Purple", "Golden", "Silver", "Lucky", "Bold", "Sly",
	"Jumping", "Running", "Charging", "Bouncing", "Dashing", "Sprinting", "Darting", "Racing",
}

var animals = []string{
	"Otter", "Cheetah", "Falcon", "Hare", "Lynx", "Marlin", "Swallow", "Gazelle", "Panther", "Viper",
	"Fox", "Wolf", "Panda", "Badger", "Ferret", "Magpie", "Osprey", "Stoat", "Weasel", "Mongoose",
	"Dolphin", "Kestrel", "Jackal", "Ocelot", "Swift", "Roadrunner",
}

// GetRandomName returns a random display name by combining an adjective with
// an animal. Used when a new player skips the name field
func GetRandomName() string {
	adjectivesIndex := random.Intn(len(adjectives))
	animalsIndex := random.Intn(len(animals))

	return fmt.Sprintf("%s %s", adjectives[adjectivesIndex], animals[animalsIndex])
}
