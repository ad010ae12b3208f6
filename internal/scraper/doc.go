// Package scraper provides HTTP fetching and HTML parsing for WikiCFP search results.
//
// The scraper package builds the tool.search query URL, parses the result page twice (once
// for cell text, once keeping hyperlinks so each event's detail page can be found) and scrapes
// the external call-for-papers link from every detail page. The shape of the WikiCFP page is
// encoded in a single Layout value: which table holds the listing, and how many tables a page
// must have before it is considered to contain results.
package scraper
