// Package lib groups supporting code that does not belong to a single layer:
// background jobs (asynq over Redis), the Resend email client and small
// utilities.
package lib
