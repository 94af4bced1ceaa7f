// Package app provides the application service layer.
//
// Orchestrates use cases: recommending posting windows for an account, evaluating inline history,
// and ingesting engagement observations. Loads history and sentiment concurrently, caches results,
// and falls back to best-practice windows when there is no usable history. Depends on domain
// interfaces, not concrete implementations.
package app
