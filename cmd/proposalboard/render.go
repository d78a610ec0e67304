package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"

	"ProposalBoard/internal/domain"
	"ProposalBoard/internal/ranking"
)

func renderPage(w io.Writer, page domain.ProposalListPage) error {
	if page.Empty {
		if _, err := fmt.Fprintln(w, "no proposals"); err != nil {
			return err
		}
		return renderDrafts(w, page.PrivateProposals)
	}

	now := time.Now()
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tGC\tSTATUS\tTITLE\tVOTES\tSCORE\tWINDOW\tVOTED")
	for _, item := range page.Items {
		number := "-"
		if item.ProposalNumber != nil {
			number = fmt.Sprintf("%d", *item.ProposalNumber)
		}

		votes, score, window := "-", "-", "-"
		if t := item.VoteResults; t != nil {
			votes = humanize.Comma(int64(t.TotalVotes))
			score = humanize.CommafWithDigits(ranking.ApprovalTotal(item).InexactFloat64(), 2)
			win := t.Window(now)
			window = strings.TrimSpace(string(win.Phase) + " " + win.Label)
		}

		voted := ""
		if marker, ok := page.Voted[item.VoteKey()]; ok {
			voted = marker.Choice
		}

		fmt.Fprintf(tw, "%s\t%d\t%s\t%s\t%s\t%s\t%s\t%s\n",
			number, item.Cycle(), item.Status, item.Title, votes, score, window, voted)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	if page.Degraded {
		fmt.Fprintf(w, "votes unavailable: %s\n", page.DegradedReason)
	}
	if page.HasMore {
		fmt.Fprintf(w, "more proposals available after page %d\n", len(page.Pages))
	}
	return renderDrafts(w, page.PrivateProposals)
}

func renderDrafts(w io.Writer, drafts []domain.ProposalRecord) error {
	if len(drafts) == 0 {
		return nil
	}
	fmt.Fprintf(w, "\ndrafts (%d)\n", len(drafts))
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTITLE\tAUTHOR")
	for _, d := range drafts {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", d.ID, d.Title, d.AuthorAddress)
	}
	return tw.Flush()
}

func renderVotes(w io.Writer, list domain.VoteList, skip int) error {
	if len(list.Votes) == 0 {
		_, err := fmt.Fprintln(w, "no votes")
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "VOTER\tCHOICE\tVP\tCAST\tAPP\tREASON")
	for _, v := range list.Votes {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			v.Voter, v.Choice, humanize.CommafWithDigits(v.VotingPower, 2), humanize.Time(v.Created), v.App, v.Reason)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	_, err := fmt.Fprintf(w, "votes %d-%d of %s\n", skip+1, skip+len(list.Votes), humanize.Comma(int64(list.Total)))
	return err
}
