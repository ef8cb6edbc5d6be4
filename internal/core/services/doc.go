// Package services implements the driving port interfaces.
// Services contain the core business logic: segmentation, alignment,
// the evidence cascade, confidence scoring and annotation reconciliation.
// They orchestrate calls to driven ports (adapters).
package services
