// Package mpr reads and rewrites MPR machine-program text.
//
// It deliberately stops short of parsing the format. A file is split into
// numbered macro blocks (a header line such as `<109 \Nuten\` up to the next
// header, the `!` end line, or EOF) and everything else is carried through
// byte for byte. On top of that split the package offers:
//
//   - Analyze, which counts macros and derives drill signatures and groove
//     lengths for cutlist enrichment;
//   - Rewrite, which removes the component block, strips macro 124 and turns
//     below-face 109 grooves into 151 pockets, returning the new text and an
//     action summary without touching disk;
//   - a static command reference embedded from reference.json.
package mpr
