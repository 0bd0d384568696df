package board

import (
	"fmt"
	"strings"
)

// ToASCII renders the board from White's side. Highlighted empty squares show
// as '*', highlighted occupied squares carry a '*' after the piece letter.
func (b *Board) ToASCII(highlights SquareSet) string {
	var sb strings.Builder
	sb.WriteString("  a b c d e f g h\n")

	for rank := 7; rank >= 0; rank-- {
		sb.WriteString(fmt.Sprintf("%d ", rank+1))
		for file := 0; file < 8; file++ {
			sq := SquareAt(file, rank)
			piece := b.At(sq)
			mark := byte(' ')
			if highlights.Has(sq) {
				mark = '*'
			}

			switch {
			case piece == nil && mark == '*':
				sb.WriteString("* ")
			case piece == nil:
				sb.WriteString(". ")
			default:
				sb.WriteByte(piece.Letter())
				sb.WriteByte(mark)
			}
		}
		sb.WriteString(fmt.Sprintf(" %d\n", rank+1))
	}
	sb.WriteString("  a b c d e f g h")

	return sb.String()
}

// Grid returns the board as eight rank strings from rank 8 down, '.' for empty
func (b *Board) Grid() []string {
	rows := make([]string, 0, 8)
	for rank := 7; rank >= 0; rank-- {
		row := make([]byte, 8)
		for file := 0; file < 8; file++ {
			row[file] = '.'
			if piece := b.At(SquareAt(file, rank)); piece != nil {
				row[file] = piece.Letter()
			}
		}
		rows = append(rows, string(row))
	}
	return rows
}
