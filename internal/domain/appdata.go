package domain

// AppData is the entire persisted state, read and written as one unit.
type AppData struct {
	Accounts   []Account     `json:"accounts"`
	Reports    []SavedReport `json:"reports"`
	SavedCards []SavedCard   `json:"savedCards"`
}

// NewAppData returns the empty default state.
func NewAppData() *AppData {
	return &AppData{
		Accounts:   []Account{},
		Reports:    []SavedReport{},
		SavedCards: []SavedCard{},
	}
}

// UnmarshalJSON decodes leniently so a blob written by an older or buggy
// client still loads.
func (d *AppData) UnmarshalJSON(data []byte) error {
	raw, err := decodeObject(data)
	if err != nil {
		return err
	}
	*d = *DecodeAppData(raw)
	return nil
}

// ReportsForAccount returns the reports attached to accountID, or all
// reports when accountID is empty. Order is preserved.
func (d *AppData) ReportsForAccount(accountID string) []SavedReport {
	if accountID == "" {
		return append([]SavedReport{}, d.Reports...)
	}
	out := []SavedReport{}
	for _, r := range d.Reports {
		if r.AccountID == accountID {
			out = append(out, r)
		}
	}
	return out
}
