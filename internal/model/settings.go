package model

// Settings is the fixed-id singleton (spec.md §3 "Settings").
type Settings struct {
	ID                      string `bson:"_id" json:"id"`
	OpenRegistration        bool   `bson:"open_registration" json:"openRegistration"`
	AllowOAuthAppsForUsers  bool   `bson:"allow_oauth_apps_for_users" json:"allowOAuthAppsForUsers"`
}

// DefaultSettings returns the singleton with its default values (spec.md
// §4.10: "open registration = true, allow user-owned OAuth apps = true").
func DefaultSettings() *Settings {
	return &Settings{
		ID:                     SettingsIDStr,
		OpenRegistration:       true,
		AllowOAuthAppsForUsers: true,
	}
}
