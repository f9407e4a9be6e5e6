// Package domain defines the core business entities of the task tracker:
// tasks with their status/priority enums and registered users.
package domain
