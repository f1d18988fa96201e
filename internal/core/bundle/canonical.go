package bundle

import (
	"encoding/json"
	"sort"
	"strings"
)

// Canonical forms are the checksum inputs. Field order is fixed by the
// struct definitions, sections and refs are sorted, and all text fields
// are whitespace-trimmed, so two semantically identical bundles encode
// to identical bytes regardless of assembly order.

type canonicalContent struct {
	Ticket   canonicalTicket    `json:"ticket"`
	Sections []canonicalSection `json:"sections"`
	Refs     []canonicalRef     `json:"refs"`
}

type canonicalTicket struct {
	DisplayID string `json:"display_id"`
	Title     string `json:"title"`
	Body      string `json:"body"`
}

type canonicalSection struct {
	AgentCategory string `json:"agent_category"`
	ArtifactType  string `json:"artifact_type"`
	Title         string `json:"title"`
	Body          string `json:"body"`
}

type canonicalRef struct {
	Kind    string `json:"kind"`
	DocID   string `json:"doc_id"`
	Version int    `json:"version"`
}

type canonicalBinding struct {
	Repo     string `json:"repo"`
	TicketID string `json:"ticket_id"`
	Role     string `json:"role"`
	Version  int    `json:"version"`
}

// CanonicalContent encodes the bundle's substantive content fields into
// the canonical byte form. Binding and volatile metadata (timestamps)
// are excluded.
func CanonicalContent(b *Bundle) []byte {
	cc := canonicalContent{
		Ticket: canonicalTicket{
			DisplayID: strings.TrimSpace(b.Ticket.DisplayID),
			Title:     strings.TrimSpace(b.Ticket.Title),
			Body:      strings.TrimSpace(b.Ticket.Body),
		},
		Sections: make([]canonicalSection, 0, len(b.Sections)),
		Refs:     make([]canonicalRef, 0, len(b.Refs)),
	}

	for _, s := range b.Sections {
		cc.Sections = append(cc.Sections, canonicalSection{
			AgentCategory: strings.TrimSpace(s.AgentCategory),
			ArtifactType:  strings.TrimSpace(s.ArtifactType),
			Title:         strings.TrimSpace(s.Title),
			Body:          strings.TrimSpace(s.Body),
		})
	}
	sort.Slice(cc.Sections, func(i, j int) bool {
		a, b := cc.Sections[i], cc.Sections[j]
		if a.AgentCategory != b.AgentCategory {
			return a.AgentCategory < b.AgentCategory
		}
		return a.ArtifactType < b.ArtifactType
	})

	for _, r := range b.Refs {
		cc.Refs = append(cc.Refs, canonicalRef{
			Kind:    strings.TrimSpace(r.Kind),
			DocID:   strings.TrimSpace(r.DocID),
			Version: r.Version,
		})
	}
	sort.Slice(cc.Refs, func(i, j int) bool {
		a, b := cc.Refs[i], cc.Refs[j]
		if a.Kind != b.Kind {
			return a.Kind < b.Kind
		}
		return a.DocID < b.DocID
	})

	// Struct encoding cannot fail; keys come out in field order.
	data, err := json.Marshal(cc)
	if err != nil {
		panic("bundle: canonical content encoding failed: " + err.Error())
	}
	return data
}

// CanonicalBinding encodes the binding metadata into its canonical byte
// form for the bundle checksum.
func CanonicalBinding(binding Binding) []byte {
	cb := canonicalBinding{
		Repo:     strings.TrimSpace(binding.Repo),
		TicketID: strings.TrimSpace(binding.TicketID),
		Role:     strings.TrimSpace(binding.Role),
		Version:  binding.Version,
	}
	data, err := json.Marshal(cb)
	if err != nil {
		panic("bundle: canonical binding encoding failed: " + err.Error())
	}
	return data
}
