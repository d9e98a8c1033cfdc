// Command amqphdr encodes and decodes AMQP 1.0 message header sections.
//
//	amqphdr encode -durable -priority 7 -ttl 30000
//	amqphdr encode -profiles profiles.toml -profile orders -encoding minimal
//	amqphdr decode 005370c00705425004404243
//	amqphdr profiles -profiles profiles.toml
package main

import (
	"encoding/hex"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"math"
	"os"
	"strings"

	"go-amqpheader/internal/profile"
	"go-amqpheader/pkg/amqp"
	"go-amqpheader/pkg/models"
)

var errUsage = errors.New("usage: amqphdr encode|decode|profiles [flags]")

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
}

func run(args []string, out io.Writer) error {
	if len(args) == 0 {
		return errUsage
	}
	switch args[0] {
	case "encode":
		return encode(args[1:], out)
	case "decode":
		return decode(args[1:], out)
	case "profiles":
		return listProfiles(args[1:], out)
	}
	return fmt.Errorf("unknown command %q\n%w", args[0], errUsage)
}

func encode(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("encode", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	durable := fs.Bool("durable", false, "durable")
	priority := fs.Uint("priority", uint(models.DefaultPriority), "priority 0-255")
	ttl := fs.Int64("ttl", -1, "time-to-live in milliseconds, -1 for none")
	firstAcquirer := fs.Bool("first-acquirer", false, "first acquirer")
	deliveryCount := fs.Uint64("delivery-count", 0, "delivery count")
	encoding := fs.String("encoding", "full", "full or minimal")
	profiles := fs.String("profiles", os.Getenv("AMQPHEADER_PROFILES"), "profile file")
	name := fs.String("profile", "", "start from this profile")
	if err := fs.Parse(args); err != nil {
		return err
	}

	policy, err := models.ParseEncodePolicy(*encoding)
	if err != nil {
		return err
	}

	h := models.NewHeader()
	if *name != "" {
		set, err := profile.Load(*profiles)
		if err != nil {
			return err
		}
		if h, err = set.Header(*name); err != nil {
			return err
		}
	}

	var flagErr error
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "durable":
			h.Durable = *durable
		case "priority":
			if *priority > math.MaxUint8 {
				flagErr = fmt.Errorf("priority %d out of range", *priority)
			}
			h.Priority = uint8(*priority)
		case "ttl":
			if *ttl < 0 {
				h.ClearTimeToLive()
			} else {
				h.SetTimeToLive(uint64(*ttl))
			}
		case "first-acquirer":
			h.FirstAcquirer = *firstAcquirer
		case "delivery-count":
			if *deliveryCount > math.MaxUint32 {
				flagErr = fmt.Errorf("delivery-count %d out of range", *deliveryCount)
			}
			h.DeliveryCount = uint32(*deliveryCount)
		}
	})
	if flagErr != nil {
		return flagErr
	}

	b, err := models.MarshalHeader(h, policy)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(out, hex.EncodeToString(b))
	return err
}

type headerView struct {
	Durable       bool    `json:"durable"`
	Priority      uint8   `json:"priority"`
	TimeToLive    *uint64 `json:"ttl"`
	FirstAcquirer bool    `json:"first_acquirer"`
	DeliveryCount uint32  `json:"delivery_count"`
	Value         string  `json:"value"`
}

func decode(args []string, out io.Writer) error {
	if len(args) != 1 {
		return errors.New("usage: amqphdr decode <hex>")
	}
	b, err := hex.DecodeString(strings.TrimSpace(args[0]))
	if err != nil {
		return fmt.Errorf("invalid hex: %w", err)
	}
	v, err := amqp.Unmarshal(b)
	if err != nil {
		return err
	}
	h, err := models.FromDescribed(v)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(headerView{
		Durable:       h.Durable,
		Priority:      h.Priority,
		TimeToLive:    h.TimeToLive,
		FirstAcquirer: h.FirstAcquirer,
		DeliveryCount: h.DeliveryCount,
		Value:         v.String(),
	})
}

func listProfiles(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("profiles", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	path := fs.String("profiles", os.Getenv("AMQPHEADER_PROFILES"), "profile file")
	if err := fs.Parse(args); err != nil {
		return err
	}
	set, err := profile.Load(*path)
	if err != nil {
		return err
	}
	for _, name := range set.Names() {
		h, _ := set.Header(name)
		if _, err := fmt.Fprintf(out, "%s\t%s\n", name, h); err != nil {
			return err
		}
	}
	return nil
}
