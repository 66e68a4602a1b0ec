// Package models lists the OpenAI chat models that can serve as a
// translation backend for the current API key.
package models
