package settings

import "context"

// SettingsRepository reads and writes the single settings row. Get returns
// Defaults() when nothing has been stored yet.
type SettingsRepository interface {
	Get(ctx context.Context) (Settings, error)
	Update(ctx context.Context, s Settings) error
}
