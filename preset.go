package bones

import (
	"fmt"
	"sort"

	"gopkg.in/yaml.v3"
)

// PlaybackConfig is a set of named playback presets, usually loaded from
// YAML:
//
//	version: "1"
//	presets:
//	  wave:
//	    animation: wave
//	    fade_in_time: 0.2
//	    layer: 1
//	    fade_out_mode: same_layer
//	    bone_masks:
//	      - bone: arm
//	        recursive: true
type PlaybackConfig struct {
	Version string                    `yaml:"version"`
	Presets map[string]PlaybackPreset `yaml:"presets"`
}

// PlaybackPreset captures the arguments of one GotoAndPlay call plus the
// state settings applied right after it. Nil pointers keep the defaults.
type PlaybackPreset struct {
	Animation    string   `yaml:"animation"`
	FadeInTime   *float64 `yaml:"fade_in_time"`
	Duration     *float64 `yaml:"duration"`
	PlayTimes    *int     `yaml:"play_times"`
	Layer        int      `yaml:"layer"`
	Group        string   `yaml:"group"`
	FadeOutMode  string   `yaml:"fade_out_mode"`
	PauseFadeOut *bool    `yaml:"pause_fade_out"`
	PauseFadeIn  *bool    `yaml:"pause_fade_in"`

	TimeScale        *float64         `yaml:"time_scale"`
	Weight           *float64         `yaml:"weight"`
	AdditiveBlending bool             `yaml:"additive_blending"`
	BoneMasks        []BoneMaskConfig `yaml:"bone_masks"`
}

// BoneMaskConfig names one bone mask entry of a preset.
type BoneMaskConfig struct {
	Bone      string `yaml:"bone"`
	Recursive bool   `yaml:"recursive"`
}

// LoadPlaybackConfig parses and validates YAML playback presets.
func LoadPlaybackConfig(data []byte) (*PlaybackConfig, error) {
	cfg := &PlaybackConfig{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("bones: failed to parse playback config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks every preset: a clip name is required, the fade-out mode
// must be known and bone mask entries must name a bone.
func (c *PlaybackConfig) Validate() error {
	for _, name := range c.Names() {
		p := c.Presets[name]
		if p.Animation == "" {
			return fmt.Errorf("bones: preset %q has no animation", name)
		}
		if _, ok := ParseFadeOutMode(p.FadeOutMode); !ok {
			return fmt.Errorf("bones: preset %q has unknown fade_out_mode %q", name, p.FadeOutMode)
		}
		for i, m := range p.BoneMasks {
			if m.Bone == "" {
				return fmt.Errorf("bones: preset %q bone_masks[%d] has no bone", name, i)
			}
		}
	}
	return nil
}

// Names returns the preset names in sorted order.
func (c *PlaybackConfig) Names() []string {
	names := make([]string, 0, len(c.Presets))
	for name := range c.Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Options converts the preset into GotoAndPlay options.
func (p PlaybackPreset) Options() []PlayOption {
	var opts []PlayOption
	if p.FadeInTime != nil {
		opts = append(opts, WithFadeIn(*p.FadeInTime))
	}
	if p.Duration != nil {
		opts = append(opts, WithDuration(*p.Duration))
	}
	if p.PlayTimes != nil {
		opts = append(opts, WithPlayTimes(*p.PlayTimes))
	}
	opts = append(opts, WithLayer(p.Layer), WithGroup(p.Group))
	if mode, ok := ParseFadeOutMode(p.FadeOutMode); ok {
		opts = append(opts, WithFadeOutMode(mode))
	}
	if p.PauseFadeOut != nil {
		opts = append(opts, WithPauseFadeOut(*p.PauseFadeOut))
	}
	if p.PauseFadeIn != nil {
		opts = append(opts, WithPauseFadeIn(*p.PauseFadeIn))
	}
	return opts
}

// PlayPreset starts the named preset of cfg. Returns an error when the
// preset or its clip does not exist.
func (an *Animation) PlayPreset(cfg *PlaybackConfig, name string) (*AnimationState, error) {
	p, ok := cfg.Presets[name]
	if !ok {
		return nil, fmt.Errorf("bones: no playback preset %q", name)
	}
	s := an.GotoAndPlay(p.Animation, p.Options()...)
	if s == nil {
		return nil, fmt.Errorf("bones: preset %q: armature %q has no animation %q", name, an.armature.name, p.Animation)
	}
	if p.TimeScale != nil {
		s.SetTimeScale(*p.TimeScale)
	}
	if p.Weight != nil {
		s.SetWeight(*p.Weight)
	}
	s.AdditiveBlending = p.AdditiveBlending
	for _, m := range p.BoneMasks {
		s.AddBoneMask(m.Bone, m.Recursive)
	}
	return s, nil
}
