// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package seo builds the sitemap and robots.txt served to crawlers.
package seo

import (
	"bytes"
	"encoding/xml"
	"strconv"
	"strings"
	"time"
)

// XMLNamespace is the sitemap XML namespace.
const XMLNamespace = "http://www.sitemaps.org/schemas/sitemap/0.9"

// Kind classifies a page for its change frequency and priority hints.
type Kind int

// Page kinds listed by the blog.
const (
	KindHome Kind = iota
	KindPage
	KindCategory
	KindPost
)

var hints = [...]struct {
	freq     string
	priority float64
}{
	KindHome:     {"daily", 1.0},
	KindPage:     {"yearly", 0.3},
	KindCategory: {"weekly", 0.6},
	KindPost:     {"monthly", 0.8},
}

// Entry is one <url> element.
type Entry struct {
	Loc        string `xml:"loc"`
	LastMod    string `xml:"lastmod,omitempty"`
	ChangeFreq string `xml:"changefreq,omitempty"`
	Priority   string `xml:"priority,omitempty"`
}

type urlset struct {
	XMLName xml.Name `xml:"urlset"`
	XMLNS   string   `xml:"xmlns,attr"`
	Entries []Entry  `xml:"url"`
}

// Sitemap collects the URLs of one site.
type Sitemap struct {
	base    string
	entries []Entry
}

// NewSitemap starts a sitemap for siteURL (scheme and host, trailing
// slash optional).
func NewSitemap(siteURL string) *Sitemap {
	return &Sitemap{base: strings.TrimSuffix(siteURL, "/")}
}

// Add lists path. A zero modified time omits <lastmod>.
func (s *Sitemap) Add(kind Kind, path string, modified time.Time) {
	h := hints[kind]
	e := Entry{
		Loc:        s.base + path,
		ChangeFreq: h.freq,
		Priority:   strconv.FormatFloat(h.priority, 'f', 1, 64),
	}
	if !modified.IsZero() {
		e.LastMod = modified.UTC().Format(time.RFC3339)
	}
	s.entries = append(s.entries, e)
}

// Len reports how many URLs were added.
func (s *Sitemap) Len() int {
	return len(s.entries)
}

// Marshal renders the sitemap document with its XML declaration.
func (s *Sitemap) Marshal() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(xml.Header)

	enc := xml.NewEncoder(&buf)
	enc.Indent("", "  ")
	if err := enc.Encode(urlset{XMLNS: XMLNamespace, Entries: s.entries}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
