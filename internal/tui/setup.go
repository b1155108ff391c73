package tui

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/theirongolddev/cachesim/internal/config"
	"github.com/theirongolddev/cachesim/internal/tui/theme"

	"github.com/charmbracelet/huh"
)

// noPreset is the select value meaning "enter prices by hand".
const noPreset = ""

// SetupValues holds the setup form inputs. Numeric fields are kept as text
// so the form can validate them as they are typed.
type SetupValues struct {
	PromptSize        string
	UserMessageSize   string
	ModelResponseSize string
	MaxPromptSize     string
	TrimmedSize       string

	Model               string
	CacheTTL            string
	SendingCost         string
	ModelCost           string
	CacheMissMultiplier string
	CacheHitMultiplier  string

	CalculateToMax bool
	Iterations     string
	Theme          string
}

// NewSetupValues pre-fills the form from an existing document. Keys the
// document leaves out fall back to config.DefaultDocument.
func NewSetupValues(doc config.Document) SetupValues {
	def := config.DefaultDocument()

	intOr := func(v, d *int64) string {
		if v != nil {
			return strconv.FormatInt(*v, 10)
		}
		return strconv.FormatInt(*d, 10)
	}
	floatOr := func(v, d *float64) string {
		if v != nil {
			return strconv.FormatFloat(*v, 'f', -1, 64)
		}
		return strconv.FormatFloat(*d, 'f', -1, 64)
	}

	vals := SetupValues{
		PromptSize:          intOr(doc.PromptSize, def.PromptSize),
		UserMessageSize:     intOr(doc.UserMessageSize, def.UserMessageSize),
		ModelResponseSize:   intOr(doc.ModelResponseSize, def.ModelResponseSize),
		MaxPromptSize:       intOr(doc.MaxPromptSize, def.MaxPromptSize),
		TrimmedSize:         intOr(doc.TrimmedSize, def.TrimmedSize),
		Model:               doc.Model,
		CacheTTL:            doc.CacheTTL,
		SendingCost:         floatOr(doc.SendingCost, def.SendingCost),
		ModelCost:           floatOr(doc.ModelCost, def.ModelCost),
		CacheMissMultiplier: floatOr(doc.CacheMissMultiplier, def.CacheMissMultiplier),
		CacheHitMultiplier:  floatOr(doc.CacheHitMultiplier, def.CacheHitMultiplier),
		CalculateToMax:      *def.CalculateToMax,
		Iterations:          strconv.Itoa(*def.Iterations),
		Theme:               doc.Theme,
	}
	if doc.CalculateToMax != nil {
		vals.CalculateToMax = *doc.CalculateToMax
	}
	if doc.Iterations != nil {
		vals.Iterations = strconv.Itoa(*doc.Iterations)
	}
	if vals.CacheTTL == "" {
		vals.CacheTTL = "5m"
	}
	if vals.Theme == "" {
		vals.Theme = theme.FlexokiDark.Name
	}
	return vals
}

// NewSetupForm builds the first-run wizard. Completing it writes into vals.
func NewSetupForm(vals *SetupValues) *huh.Form {
	presets := []huh.Option[string]{huh.NewOption("None (enter prices)", noPreset)}
	for _, name := range config.PresetNames() {
		presets = append(presets, huh.NewOption(name, name))
	}

	themes := make([]huh.Option[string], 0, len(theme.All))
	for _, name := range theme.Names() {
		themes = append(themes, huh.NewOption(name, name))
	}

	sizeInput := func(title, desc string, v *string) huh.Field {
		return huh.NewInput().Title(title).Description(desc).Value(v).Validate(validateTokens)
	}
	rateInput := func(title, desc string, v *string) huh.Field {
		return huh.NewInput().Title(title).Description(desc).Value(v).Validate(validateRate)
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewNote().
				Title("Welcome to cachesim!").
				Description("Describe a conversation and how it is billed.\nEvery answer can be changed later in the config file."),
		),

		huh.NewGroup(
			sizeInput("Prompt size", "Tokens in the system prompt", &vals.PromptSize),
			sizeInput("User message size", "Tokens added by each user message", &vals.UserMessageSize),
			sizeInput("Model response size", "Tokens in each model response", &vals.ModelResponseSize),
			sizeInput("Max prompt size", "Largest context the model accepts", &vals.MaxPromptSize),
			sizeInput("Trimmed size", "Context size after a truncation", &vals.TrimmedSize),
		).Title("Conversation"),

		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Pricing preset").
				Description("A preset fills in any price you leave blank").
				Options(presets...).
				Value(&vals.Model),
			huh.NewSelect[string]().
				Title("Cache lifetime").
				Options(huh.NewOption("5 minutes", "5m"), huh.NewOption("1 hour", "1h")).
				Value(&vals.CacheTTL),
		).Title("Pricing"),

		huh.NewGroup(
			rateInput("Sending cost", "USD per million input tokens", &vals.SendingCost),
			rateInput("Model cost", "USD per million output tokens", &vals.ModelCost),
			rateInput("Cache miss multiplier", "Applied to input tokens written to the cache", &vals.CacheMissMultiplier),
			rateInput("Cache hit multiplier", "Applied to input tokens read from the cache", &vals.CacheHitMultiplier),
		).Title("Prices").WithHideFunc(func() bool { return vals.Model != noPreset }),

		huh.NewGroup(
			huh.NewConfirm().
				Title("Run until the context is full?").
				Value(&vals.CalculateToMax),
		),

		huh.NewGroup(
			huh.NewInput().
				Title("Turns").
				Description("Number of turns to project").
				Value(&vals.Iterations).
				Validate(validateIterations),
		).WithHideFunc(func() bool { return vals.CalculateToMax }),

		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Color theme").
				Options(themes...).
				Value(&vals.Theme),
		),
	).WithTheme(huh.ThemeCharm())
}

func validateTokens(s string) error {
	n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return errors.New("enter a whole number of tokens")
	}
	if n < 0 {
		return errors.New("must not be negative")
	}
	return nil
}

func validateRate(s string) error {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return errors.New("enter a number")
	}
	if !(f >= 0) {
		return errors.New("must not be negative")
	}
	return nil
}

func validateIterations(s string) error {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 1 {
		return errors.New("enter a whole number of at least 1")
	}
	return nil
}

// Document converts the answers into a config document. With a preset
// selected the prices are left for the preset to fill.
func (v SetupValues) Document() (config.Document, error) {
	var doc config.Document

	sizes := []struct {
		key string
		in  string
		dst **int64
	}{
		{"promptSize", v.PromptSize, &doc.PromptSize},
		{"userMessageSize", v.UserMessageSize, &doc.UserMessageSize},
		{"modelResponseSize", v.ModelResponseSize, &doc.ModelResponseSize},
		{"maxPromptSize", v.MaxPromptSize, &doc.MaxPromptSize},
		{"trimmedSize", v.TrimmedSize, &doc.TrimmedSize},
	}
	for _, s := range sizes {
		if err := validateTokens(s.in); err != nil {
			return config.Document{}, fmt.Errorf("%s: %w", s.key, err)
		}
		n, _ := strconv.ParseInt(strings.TrimSpace(s.in), 10, 64)
		*s.dst = &n
	}

	if v.Model != noPreset {
		doc.Model = v.Model
		if v.CacheTTL != "5m" {
			doc.CacheTTL = v.CacheTTL
		}
	} else {
		rates := []struct {
			key string
			in  string
			dst **float64
		}{
			{"sendingCost", v.SendingCost, &doc.SendingCost},
			{"modelCost", v.ModelCost, &doc.ModelCost},
			{"cacheMissMultiplier", v.CacheMissMultiplier, &doc.CacheMissMultiplier},
			{"cacheHitMultiplier", v.CacheHitMultiplier, &doc.CacheHitMultiplier},
		}
		for _, r := range rates {
			if err := validateRate(r.in); err != nil {
				return config.Document{}, fmt.Errorf("%s: %w", r.key, err)
			}
			f, _ := strconv.ParseFloat(strings.TrimSpace(r.in), 64)
			*r.dst = &f
		}
	}

	toMax := v.CalculateToMax
	doc.CalculateToMax = &toMax
	if !toMax {
		if err := validateIterations(v.Iterations); err != nil {
			return config.Document{}, fmt.Errorf("iterations: %w", err)
		}
		n, _ := strconv.Atoi(strings.TrimSpace(v.Iterations))
		doc.Iterations = &n
	}

	if v.Theme != theme.FlexokiDark.Name {
		doc.Theme = v.Theme
	}
	return doc, nil
}
