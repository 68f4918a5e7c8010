package models

// Match is one fixture of a league or one slot of a knockout bracket.
//
// A nil participant with its Bye flag set is a bye. A nil participant without
// the flag is a slot still waiting for the winner of an earlier match.
type Match struct {
	ID           string  `json:"id"`
	Round        int     `json:"round"`
	SlotIndex    int     `json:"slot_index"`
	Player1ID    *string `json:"player1_id"`
	Player2ID    *string `json:"player2_id"`
	Player1Bye   bool    `json:"player1_bye,omitempty"`
	Player2Bye   bool    `json:"player2_bye,omitempty"`
	Player1Score int     `json:"player1_score"`
	Player2Score int     `json:"player2_score"`
	WinnerID     *string `json:"winner_id"`
	Completed    bool    `json:"completed"`
}

// IsBye reports whether at least one side of the match is a bye.
// Bye matches never take a score.
func (m Match) IsBye() bool {
	return m.Player1Bye || m.Player2Bye
}

// Ready reports whether both participants are known real players.
func (m Match) Ready() bool {
	return m.Player1ID != nil && m.Player2ID != nil && !m.IsBye()
}

// Involves reports whether playerID takes part in the match.
func (m Match) Involves(playerID string) bool {
	return (m.Player1ID != nil && *m.Player1ID == playerID) ||
		(m.Player2ID != nil && *m.Player2ID == playerID)
}

// Clone returns a copy that shares no pointers with m.
func (m Match) Clone() Match {
	c := m
	c.Player1ID = cloneID(m.Player1ID)
	c.Player2ID = cloneID(m.Player2ID)
	c.WinnerID = cloneID(m.WinnerID)
	return c
}

// StringPtr returns a pointer to a copy of s.
func StringPtr(s string) *string {
	return &s
}

// Deref returns the pointed-to id or an empty string for nil.
func Deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func cloneID(id *string) *string {
	if id == nil {
		return nil
	}
	v := *id
	return &v
}
