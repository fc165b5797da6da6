package branch

import "strings"

// MessageMatch is one search hit across the conversation tree.
type MessageMatch struct {
	BranchID     string
	BranchTitle  string
	MessageIndex int
	Role         string
	Content      string
	Preview      string
	Timestamp    int64
}

// SearchMessages scans every branch for messages containing the query,
// case-insensitively. System messages are skipped; they carry narrator
// instructions, not story content.
func (s *Store) SearchMessages(query string) []MessageMatch {
	if query == "" {
		return []MessageMatch{}
	}

	queryLower := strings.ToLower(query)
	var matches []MessageMatch

	for _, b := range s.Branches() {
		for i, msg := range b.Messages {
			if msg.Role == RoleSystem {
				continue
			}

			if strings.Contains(strings.ToLower(msg.Content), queryLower) {
				preview := msg.Content
				if len(preview) > 100 {
					preview = preview[:100] + "..."
				}

				matches = append(matches, MessageMatch{
					BranchID:     b.ID,
					BranchTitle:  b.Title,
					MessageIndex: i,
					Role:         msg.Role,
					Content:      msg.Content,
					Preview:      preview,
					Timestamp:    msg.Timestamp,
				})
			}
		}
	}

	return matches
}
