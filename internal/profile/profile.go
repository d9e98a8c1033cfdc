// Package profile loads named header presets from TOML.
//
//	[profiles.orders]
//	durable = true
//	priority = 6
//	ttl = "30s"        # or ttl_ms = 30000
//	first_acquirer = true
//	delivery_count = 0
//
// Keys left out keep the header default.
package profile

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"go-amqpheader/pkg/models"
)

var ErrUnknownProfile = errors.New("profile: unknown profile")

type fileProfile struct {
	Durable       bool   `toml:"durable"`
	Priority      int64  `toml:"priority"`
	TTL           string `toml:"ttl"`
	TTLMillis     int64  `toml:"ttl_ms"`
	FirstAcquirer bool   `toml:"first_acquirer"`
	DeliveryCount int64  `toml:"delivery_count"`
}

type fileConfig struct {
	Profiles map[string]fileProfile `toml:"profiles"`
}

// Set is an immutable collection of named header presets.
type Set struct {
	profiles map[string]*models.Header
}

// Load reads presets from the TOML file at path.
func Load(path string) (*Set, error) {
	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return nil, fmt.Errorf("load header profiles: %w", err)
	}
	return build(raw, meta)
}

// Parse reads presets from TOML text.
func Parse(data string) (*Set, error) {
	var raw fileConfig
	meta, err := toml.Decode(data, &raw)
	if err != nil {
		return nil, fmt.Errorf("parse header profiles: %w", err)
	}
	return build(raw, meta)
}

func build(raw fileConfig, meta toml.MetaData) (*Set, error) {
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, fmt.Errorf("profile: unknown keys %s", strings.Join(keys, ", "))
	}

	set := &Set{profiles: make(map[string]*models.Header, len(raw.Profiles))}
	for name, p := range raw.Profiles {
		h, err := p.header(func(key string) bool { return meta.IsDefined("profiles", name, key) })
		if err != nil {
			return nil, fmt.Errorf("profile %q: %w", name, err)
		}
		set.profiles[name] = h
	}
	return set, nil
}

func (p fileProfile) header(defined func(string) bool) (*models.Header, error) {
	h := models.NewHeader()
	h.Durable = p.Durable
	h.FirstAcquirer = p.FirstAcquirer

	if defined("priority") {
		if p.Priority < 0 || p.Priority > math.MaxUint8 {
			return nil, fmt.Errorf("priority %d out of range", p.Priority)
		}
		h.Priority = uint8(p.Priority)
	}

	if defined("delivery_count") {
		if p.DeliveryCount < 0 || p.DeliveryCount > math.MaxUint32 {
			return nil, fmt.Errorf("delivery_count %d out of range", p.DeliveryCount)
		}
		h.DeliveryCount = uint32(p.DeliveryCount)
	}

	switch {
	case defined("ttl") && defined("ttl_ms"):
		return nil, errors.New("ttl and ttl_ms are mutually exclusive")
	case defined("ttl"):
		d, err := time.ParseDuration(strings.TrimSpace(p.TTL))
		if err != nil {
			return nil, fmt.Errorf("parse ttl: %w", err)
		}
		if d < 0 {
			return nil, fmt.Errorf("ttl %s is negative", d)
		}
		h.SetTimeToLive(uint64(d / time.Millisecond))
	case defined("ttl_ms"):
		if p.TTLMillis < 0 {
			return nil, fmt.Errorf("ttl_ms %d is negative", p.TTLMillis)
		}
		h.SetTimeToLive(uint64(p.TTLMillis))
	}
	return h, nil
}

// Header returns a fresh copy of the named preset.
func (s *Set) Header(name string) (*models.Header, error) {
	h, ok := s.profiles[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownProfile, name)
	}
	return h.Clone(), nil
}

// Names returns the preset names in sorted order.
func (s *Set) Names() []string {
	names := make([]string, 0, len(s.profiles))
	for name := range s.profiles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
