// Package program holds the value type describing a DPU program image. The
// loader that produces a Program from an ELF binary is an external
// collaborator and is not part of this repository; Program only needs to
// be a value the pipeline and the Driver contract can pass around.
package program

// Section is a contiguous block of bytes destined for a specific memory
// offset (instruction memory or working memory, depending on which slice of
// Program it appears in).
type Section struct {
	Offset uint32
	Bytes  []byte
}

// Program is a fully-resolved DPU program image: one or more instruction
// sections and one or more data sections, ready to be handed to a Driver's
// Load call.
type Program struct {
	InstructionSections []Section
	DataSections        []Section
}

// NrInstructionBytes returns the total size, in bytes, of all instruction
// sections.
func (p *Program) NrInstructionBytes() int {
	n := 0
	for _, s := range p.InstructionSections {
		n += len(s.Bytes)
	}
	return n
}

// NrDataBytes returns the total size, in bytes, of all data sections.
func (p *Program) NrDataBytes() int {
	n := 0
	for _, s := range p.DataSections {
		n += len(s.Bytes)
	}
	return n
}
