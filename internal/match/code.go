package match

import "github.com/streamerquiz/matchserver/internal/random"

// Alphabet is the fixed character set for match codes. Visually ambiguous
// characters (O, 0, I, 1) are excluded so codes stay human-typeable.
const Alphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// CodeLength is the length of every generated match code.
const CodeLength = 6

// CodeGenerator produces candidate match codes. Uniqueness is the caller's
// concern; Generate may return a code that is already in use.
type CodeGenerator interface {
	Generate() string
}

// Generator draws codes uniformly at random (with replacement) from Alphabet.
// It is pure routing of randomness: no side effects and no failure mode.
type Generator struct {
	src random.Source
}

// NewGenerator creates a Generator backed by the given randomness source.
//
// Precondition: src must be non-nil.
func NewGenerator(src random.Source) *Generator {
	return &Generator{src: src}
}

// Generate returns a CodeLength-character code drawn from Alphabet.
//
// Postcondition: len(code) == CodeLength and every character is in Alphabet.
func (g *Generator) Generate() string {
	buf := make([]byte, CodeLength)
	for i := range buf {
		buf[i] = Alphabet[g.src.Intn(len(Alphabet))]
	}
	return string(buf)
}
