package options

import (
	"net/http"

	"github.com/spf13/cobra"

	"tableflip.dev/duedeck/pkg/app"
	"tableflip.dev/duedeck/pkg/store"
)

// SourceOptions picks the config file and lets flags override where tasks
// are read from.
type SourceOptions struct {
	ConfigFile string
	SheetID    string
	Class      int
	File       string
	URL        string
	Webhook    string
}

func AddSourceArgs(cmd *cobra.Command, o *SourceOptions) {
	f := cmd.PersistentFlags()
	f.StringVar(&o.ConfigFile, "config", "",
		"Config file (default .duedeck.yaml in $DUEDECK_CONFIG_PATH or the working directory).")
	f.StringVar(&o.SheetID, "sheet", "",
		"Google Sheets document id.")
	f.IntVarP(&o.Class, "class", "c", 0,
		"Class tab to read. Defaults to the last one used.")
	f.StringVar(&o.File, "file", "",
		"Read tasks from a local CSV or JSON file.")
	f.StringVar(&o.URL, "url", "",
		"Read tasks from a CSV URL.")
	f.StringVar(&o.Webhook, "webhook", "",
		"Read tasks from a JSON webhook.")
}

// Overrides maps the set flags onto config keys.
func (o *SourceOptions) Overrides() map[string]interface{} {
	out := map[string]interface{}{}
	set := func(key, val string) {
		if val != "" {
			out[key] = val
		}
	}
	set(store.KeySheetID, o.SheetID)
	set(store.KeyFile, o.File)
	set(store.KeySourceURL, o.URL)
	set(store.KeyWebhookURL, o.Webhook)
	return out
}

// Env is everything a command needs to refresh.
type Env struct {
	Settings *store.Settings
	Prefs    *store.Prefs
	Class    int
}

// Load reads the settings and opens the preference store.
func (o *SourceOptions) Load() (*Env, error) {
	s, err := store.LoadSettings(store.LoadOptions{
		ConfigFile: o.ConfigFile,
		Overrides:  o.Overrides(),
	})
	if err != nil {
		return nil, err
	}
	prefs, err := store.OpenPrefs(s.StatePath)
	if err != nil {
		return nil, err
	}
	return &Env{
		Settings: s,
		Prefs:    prefs,
		Class:    app.ClassFor(s, prefs, o.Class),
	}, nil
}

// Service builds the refresh service for class.
func (e *Env) Service(class int) (*app.Service, error) {
	return app.NewService(e.Settings, e.Prefs, class, http.DefaultClient)
}
