// Package sentiment turns trending-discussion sentiment into inputs for the schedule engine.
//
// Normalize maps a SentimentSignal to a scoring weight in [0,1]. Analyzer is a keyword-based
// fallback used when no hosted provider is configured or the provider fails. Label, Insights and
// ContentIdeas produce the human-readable parts of a recommendation response.
package sentiment
