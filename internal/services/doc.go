// Package services defines the shared error taxonomy and context annotations
// used by every external collaborator client and by the workflow engine.
package services
