package telegram

import (
	"fmt"
	"os"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary //nolint:gochecknoglobals // skip

// Account is one pool identity from the accounts file.
type Account struct {
	ApiID    int    `json:"api_id"`
	ApiHash  string `json:"api_hash"`
	Phone    string `json:"phone"`
	Password string `json:"password"`
	// Session is the session file stem; defaults to session_<index>.
	Session string `json:"session"`
}

func LoadAccounts(path string) ([]Account, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("os.ReadFile: %w", err)
	}

	var accounts []Account
	if err := json.Unmarshal(data, &accounts); err != nil {
		return nil, fmt.Errorf("json.Unmarshal: %w", err)
	}

	for i := range accounts {
		if accounts[i].Session == "" {
			accounts[i].Session = fmt.Sprintf("session_%d", i)
		}
	}

	return accounts, nil
}
