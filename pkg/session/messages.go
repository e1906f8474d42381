package session

import (
	"fmt"

	"github.com/gwillem/clawgantry/pkg/gantry"
)

// Messages holds the status texts shown at each step of a session.
type Messages struct {
	Welcome []string
	Ready   []string
	Win     []string
	Lose    []string
	// Credits renders the remaining credit count.
	Credits func(n int) []string
}

func creditsLeft(n int) []string {
	return []string{fmt.Sprintf("You have %d", n), "credit(s)", "remaining"}
}

var clawMessages = Messages{
	Welcome: []string{"Insert a ticket", "to play!"},
	Ready:   []string{"Ready to play!", "Start moving", "to begin game!"},
	Win:     []string{"Congratulations!", "You won!!"},
	Lose:    []string{"Too bad,", "you lost!", "Try again!"},
	Credits: creditsLeft,
}

var warehouseMessages = Messages{
	Welcome: []string{"Insert an ID card", "to store items"},
	Ready:   []string{"Card accepted", "Start moving", "to pick an item"},
	Win:     []string{"Item stored", "Thank you!"},
	Lose:    []string{"Nothing picked", "Try again!"},
	Credits: func(n int) []string {
		return []string{fmt.Sprintf("You have %d", n), "pick(s)", "remaining"}
	},
}

// MessagesFor returns the texts for a mode.
func MessagesFor(m gantry.Mode) Messages {
	if m == gantry.ModeWarehouse {
		return warehouseMessages
	}
	return clawMessages
}

// CreditsFor maps an ID card to the credits it grants.
func CreditsFor(c gantry.Color, cfg gantry.Config) int {
	switch c {
	case gantry.ColorBlue:
		return cfg.BlueCredits
	case gantry.ColorGreen:
		return cfg.GreenCredits
	default:
		return 0
	}
}
