package model

// Certificate describes one key container reported by the local signer.
// Disk, Path, Name and Alias together identify the container for a
// load-key request; Index is its position in the signer's listing.
type Certificate struct {
	Disk   string `json:"disk"`
	Path   string `json:"path"`
	Name   string `json:"name"`
	Alias  string `json:"alias"`
	Index  int    `json:"index"`
	CN     string `json:"cn,omitempty"`
	Serial string `json:"serial,omitempty"`
}
