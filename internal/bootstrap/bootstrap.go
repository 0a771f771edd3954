// Package bootstrap contains the reset routine placed into test cartridges.
// The routine switches the 65816 into native mode, sets up the stack, turns the
// screen off, sets the backdrop color to red, turns the screen back on, enables
// NMI and loops forever.
package bootstrap

// Instruction is one encoded instruction with its assembly text.
type Instruction struct {
	Bytes []byte
	Text  string
}

// Stream is an opaque sequence of encoded instructions.
type Stream []Instruction

// ResetRoutine is the bootstrap routine of the test ROM.
var ResetRoutine = Stream{
	{[]byte{0x78}, "sei"},
	{[]byte{0x18}, "clc"},
	{[]byte{0xFB}, "xce"},
	{[]byte{0xC2, 0x30}, "rep #$30"},
	{[]byte{0xA9, 0xFF, 0x1F}, "lda #$1FFF"},
	{[]byte{0x1B}, "tcs"},
	{[]byte{0x64, 0x00}, "stz $00"},
	{[]byte{0xE2, 0x20}, "sep #$20"},

	{[]byte{0xA9, 0x8F}, "lda #$8F"},
	{[]byte{0x8D, 0x00, 0x21}, "sta $2100"}, // forced blank

	{[]byte{0x9C, 0x21, 0x21}, "stz $2121"},
	{[]byte{0xA9, 0x1F}, "lda #$1F"},
	{[]byte{0x8D, 0x22, 0x21}, "sta $2122"},
	{[]byte{0xA9, 0x00}, "lda #$00"},
	{[]byte{0x8D, 0x22, 0x21}, "sta $2122"},

	{[]byte{0xA9, 0x0F}, "lda #$0F"},
	{[]byte{0x8D, 0x00, 0x21}, "sta $2100"},

	{[]byte{0xA9, 0x80}, "lda #$80"},
	{[]byte{0x8D, 0x00, 0x42}, "sta $4200"},

	{[]byte{0x80, 0xFE}, "bra *"},
}

// Bytes returns the flattened byte sequence of the stream.
func (s Stream) Bytes() []byte {
	var b []byte
	for _, ins := range s {
		b = append(b, ins.Bytes...)
	}
	return b
}

// Len returns the encoded size of the stream in bytes.
func (s Stream) Len() int {
	var n int
	for _, ins := range s {
		n += len(ins.Bytes)
	}
	return n
}
