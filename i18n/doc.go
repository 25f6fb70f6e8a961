// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package i18n holds the English and Greek content of the petition site.

Each language is one embedded YAML file under locales/ with UI messages,
neighborhood labels, the five freedoms, and the four manifesto pillars.
English is the base locale: missing messages and unknown languages fall back
to it.

	b := i18n.Default()
	b.T("el", "form_submit")          // "Επιβεβαίωση Υπογραφής"
	b.FormatCount("el", 1000)         // "1.000"
	b.NormalizeLocation("Τούμπα")     // "Toumba", true

Language negotiation uses golang.org/x/text/language: ParseLang for explicit
choices (query string, cookie) and MatchAcceptLanguage for the browser header.
*/
package i18n
