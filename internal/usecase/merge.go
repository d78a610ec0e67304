package usecase

import "ProposalBoard/internal/domain"

// Concat flattens raw pages in the order given.
func Concat(pages []domain.RawPage) []domain.ProposalRecord {
	total := 0
	for _, p := range pages {
		total += len(p.Items)
	}

	out := make([]domain.ProposalRecord, 0, total)
	for _, p := range pages {
		out = append(out, p.Items...)
	}
	return out
}

// PrivateProposals collects the draft proposals of all pages, deduplicated by
// ID in first-seen order. The backend repeats them on every page.
func PrivateProposals(pages []domain.RawPage) []domain.ProposalRecord {
	seen := map[string]struct{}{}
	var out []domain.ProposalRecord
	for _, p := range pages {
		for _, rec := range p.PrivateProposals {
			if _, ok := seen[rec.ID]; ok {
				continue
			}
			seen[rec.ID] = struct{}{}
			out = append(out, rec)
		}
	}
	return out
}

// CandidateIDs collects the vote keys of proposals that went to a vote,
// deduplicated in first-seen order.
func CandidateIDs(proposals []domain.ProposalRecord) []string {
	seen := make(map[string]struct{}, len(proposals))
	ids := make([]string, 0, len(proposals))
	for _, p := range proposals {
		key := p.VoteKey()
		if key == "" {
			continue
		}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		ids = append(ids, key)
	}
	return ids
}

// Merge left-joins tallies onto proposals. The result has the same length and
// order as proposals; only VoteResults is set.
func Merge(proposals []domain.ProposalRecord, tallies map[string]domain.VoteTally) []domain.MergedProposal {
	out := make([]domain.MergedProposal, len(proposals))
	for i, p := range proposals {
		out[i] = domain.MergedProposal{ProposalRecord: p}
		key := p.VoteKey()
		if key == "" {
			continue
		}
		if tally, ok := tallies[key]; ok {
			tally := tally
			out[i].VoteResults = &tally
		}
	}
	return out
}
