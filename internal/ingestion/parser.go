// Package ingestion turns raw launch-program notifications into ordered
// Candidate observations.
package ingestion

import (
	"encoding/base64"
	"encoding/binary"
	"regexp"
	"strings"

	"github.com/mr-tron/base58"

	"solana-sniper/internal/domain"
	"solana-sniper/internal/rpcx"
)

// PumpFun is the pump.fun launch program ID.
const PumpFun = "6EF8rrecthR5Dkzon8Nwu78hRvfCKubJ14M5uBEwF6P"

// LaunchParser extracts new-token launches from pump.fun program logs.
type LaunchParser struct {
	program       string
	createPattern *regexp.Regexp
	mintPattern   *regexp.Regexp
}

// NewLaunchParser creates a parser for the given launch program.
func NewLaunchParser(program string) *LaunchParser {
	if program == "" {
		program = PumpFun
	}
	return &LaunchParser{
		program:       program,
		createPattern: regexp.MustCompile(`Program log: Instruction: Create`),
		mintPattern:   regexp.MustCompile(`mint=([A-Za-z0-9]+)`),
	}
}

// Parse extracts a launch candidate from one log notification. Returns nil
// when the notification is not a successful token creation.
func (p *LaunchParser) Parse(note rpcx.LaunchLog, timestampMs int64) *domain.Candidate {
	if note.Err != nil {
		return nil
	}

	inProgram := false
	sawCreate := false
	var mint, creator string

	for _, line := range note.Logs {
		if strings.Contains(line, "Program "+p.program+" invoke") {
			inProgram = true
			continue
		}
		if strings.Contains(line, "Program "+p.program+" success") ||
			strings.Contains(line, "Program "+p.program+" failed") {
			inProgram = false
			continue
		}
		if !inProgram {
			continue
		}

		if p.createPattern.MatchString(line) {
			sawCreate = true
			continue
		}

		if !sawCreate {
			continue
		}

		// Anchor CreateEvent arrives as "Program data: <base64>".
		if data, ok := strings.CutPrefix(line, "Program data: "); ok {
			if m, c, ok := decodeCreateEvent(data); ok {
				mint, creator = m, c
			}
			continue
		}

		// Fallback for providers that expand the event into plain logs.
		if match := p.mintPattern.FindStringSubmatch(line); match != nil && mint == "" {
			mint = match[1]
		}
	}

	if !sawCreate || mint == "" {
		return nil
	}

	return &domain.Candidate{
		Mint:         mint,
		Creator:      creator,
		TxSignature:  note.Signature,
		Slot:         note.Slot,
		DiscoveredAt: timestampMs,
	}
}

// decodeCreateEvent parses the borsh-encoded pump.fun CreateEvent:
// discriminator(8) | name(str) | symbol(str) | uri(str) | mint(32) |
// bonding_curve(32) | user(32). Strings carry a u32 length prefix.
func decodeCreateEvent(encoded string) (mint, creator string, ok bool) {
	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil || len(raw) < 8 {
		return "", "", false
	}

	offset := 8 // skip event discriminator
	for i := 0; i < 3; i++ {
		if offset+4 > len(raw) {
			return "", "", false
		}
		strLen := int(binary.LittleEndian.Uint32(raw[offset:]))
		offset += 4 + strLen
	}

	if offset+96 > len(raw) {
		return "", "", false
	}

	mint = base58.Encode(raw[offset : offset+32])
	creator = base58.Encode(raw[offset+64 : offset+96])
	return mint, creator, true
}
