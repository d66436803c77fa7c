// Package textutil provides text helpers shared by the cutlist and MPR code:
// legacy encoding detection and round-tripping, number formatting that matches
// the values machine operators expect in exported columns, and file-name
// sanitizing.
package textutil
