// Package history holds engagement observations for one analysis run and converts raw post
// metrics and CSV exports into observations.
package history
