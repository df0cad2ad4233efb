// Package key provides CLI helpers to display the card legend.
package key

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/gosuri/uitable"

	"tableflip.dev/duedeck/pkg/card"
	"tableflip.dev/duedeck/pkg/urgency"
)

// Key prints what the badges, colours and subject emoji on a card mean.
type Key struct {
	Out io.Writer
}

func (k *Key) out() io.Writer {
	if k.Out != nil {
		return k.Out
	}
	return color.Output
}

// Do renders the urgency and subject keys.
func (k *Key) Do(_ context.Context) error {
	bold := color.New(color.Bold)

	tbl := uitable.New()
	tbl.Separator = "  "
	tbl.AddRow(bold.Sprint("   Urgency"), bold.Sprint("Meaning"))
	for _, r := range []struct {
		level urgency.Level
		badge string
		text  string
	}{
		{urgency.Overdue, badgeFor(urgency.Overdue), "deadline has passed"},
		{urgency.DueSoon, badgeFor(urgency.DueSoon), "due today or tomorrow"},
		{urgency.Normal, "-", "due later, or no readable date"},
	} {
		tbl.AddRow(r.badge, fmt.Sprintf("%s: %s", r.level, r.text))
	}
	tbl.RightAlign(0)
	_, _ = fmt.Fprintln(k.out(), tbl)
	_, _ = fmt.Fprintln(k.out())

	subjects := uitable.New()
	subjects.Separator = "  "
	subjects.MaxColWidth = 60
	subjects.Wrap = true
	subjects.AddRow(bold.Sprint("Emoji"), bold.Sprint("Title contains"))
	for _, s := range card.Subjects() {
		words := strings.Join(s.Keywords, ", ")
		if words == "" {
			words = "anything else"
		}
		subjects.AddRow(s.Emoji, words)
	}
	subjects.RightAlign(0)
	_, _ = fmt.Fprintln(k.out(), subjects)
	return nil
}

func badgeFor(l urgency.Level) string {
	return card.Card{Level: l}.Badge()
}
