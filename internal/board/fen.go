package board

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"chess-rules/internal/core"
)

const (
	StartingFEN = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"
)

var (
	rankPattern     = regexp.MustCompile(`^[prnbqkPRNBQK1-8]+$`)
	castlingPattern = regexp.MustCompile(`^(-|K?Q?k?q?)$`)
	counterPattern  = regexp.MustCompile(`^[0-9]+$`)
)

// Per-side piece maxima allowing for promotions
var kindMaxima = map[Kind]int{
	King:   1,
	Queen:  9,
	Rook:   10,
	Bishop: 10,
	Knight: 10,
	Pawn:   8,
}

// FENError reports which field of a FEN string failed validation
type FENError struct {
	FEN    string
	Field  string
	Reason string
}

func (e *FENError) Error() string {
	return fmt.Sprintf("invalid FEN %s: %s", e.Field, e.Reason)
}

func fenError(fen, field, format string, args ...any) *FENError {
	return &FENError{FEN: fen, Field: field, Reason: fmt.Sprintf(format, args...)}
}

// ParseFEN strictly parses and validates a FEN string
func ParseFEN(fen string) (*Position, error) {
	pos, ferr := parseFEN(fen)
	if ferr != nil {
		return nil, ferr
	}
	return pos, nil
}

// LoadFEN parses fen, falling back to the starting position when it is malformed.
// The returned FENError is a notice describing the rejected input, not a failure.
func LoadFEN(fen string) (*Position, *FENError) {
	pos, ferr := parseFEN(fen)
	if ferr == nil {
		return pos, nil
	}
	start, _ := LoadFEN(StartingFEN)
	return start, ferr
}

func parseFEN(fen string) (*Position, *FENError) {
	parts := strings.Fields(fen)
	if len(parts) != 6 {
		return nil, fenError(fen, "fields", "expected 6 fields, got %d", len(parts))
	}

	pos := &Position{Board: NewBoard(), EnPassant: NoEnPassant}

	ranks := strings.Split(parts[0], "/")
	if len(ranks) != 8 {
		return nil, fenError(fen, "placement", "expected 8 ranks, got %d", len(ranks))
	}

	var counts [2]map[Kind]int
	counts[0], counts[1] = map[Kind]int{}, map[Kind]int{}

	for i, row := range ranks {
		rank := 7 - i
		if !rankPattern.MatchString(row) {
			return nil, fenError(fen, "placement", "rank %d has invalid characters", rank+1)
		}
		file := 0
		prevDigit := false
		for j := 0; j < len(row); j++ {
			ch := row[j]
			if ch >= '1' && ch <= '8' {
				if prevDigit {
					return nil, fenError(fen, "placement", "rank %d has adjacent digits", rank+1)
				}
				prevDigit = true
				file += int(ch - '0')
				continue
			}
			prevDigit = false
			if file >= 8 {
				return nil, fenError(fen, "placement", "rank %d has too many squares", rank+1)
			}
			kind, _ := KindFromLetter(ch)
			color := core.ColorWhite
			if ch >= 'a' {
				color = core.ColorBlack
			}
			if kind == Pawn && (rank == 0 || rank == 7) {
				return nil, fenError(fen, "placement", "pawn on rank %d", rank+1)
			}
			counts[color.Index()][kind]++
			pos.Board.Place(kind, color, SquareAt(file, rank))
			file++
		}
		if file != 8 {
			return nil, fenError(fen, "placement", "rank %d has %d squares", rank+1, file)
		}
	}

	for side, c := range counts {
		color := core.ColorWhite
		if side == 1 {
			color = core.ColorBlack
		}
		if c[King] != 1 {
			return nil, fenError(fen, "placement", "%s must have exactly one king, has %d", color.Name(), c[King])
		}
		for kind, limit := range kindMaxima {
			if c[kind] > limit {
				return nil, fenError(fen, "placement", "%s has %d %ss, at most %d allowed", color.Name(), c[kind], kind, limit)
			}
		}
	}

	turn, ok := core.ParseColor(parts[1])
	if !ok {
		return nil, fenError(fen, "turn", "must be 'w' or 'b', got %q", parts[1])
	}
	pos.Turn = turn

	if !castlingPattern.MatchString(parts[2]) {
		return nil, fenError(fen, "castling", "malformed rights %q", parts[2])
	}
	pos.Castling = CastlingRights{
		WhiteKingside:  strings.Contains(parts[2], "K"),
		WhiteQueenside: strings.Contains(parts[2], "Q"),
		BlackKingside:  strings.Contains(parts[2], "k"),
		BlackQueenside: strings.Contains(parts[2], "q"),
	}

	if parts[3] != "-" {
		target, ok := ParseSquare(parts[3])
		if !ok {
			return nil, fenError(fen, "en passant", "malformed square %q", parts[3])
		}
		// White to move means black just double-stepped over rank 6, and vice versa
		wantRank, dir := 5, South
		if turn == core.ColorBlack {
			wantRank, dir = 2, North
		}
		if target.Rank() != wantRank {
			return nil, fenError(fen, "en passant", "target %s on wrong rank for %s to move", target, turn.Name())
		}
		if !pos.Board.Empty(target) {
			return nil, fenError(fen, "en passant", "target %s is occupied", target)
		}
		pawn := pos.Board.At(target.Step(dir, 1))
		if pawn == nil || pawn.Kind != Pawn || pawn.Color == turn {
			return nil, fenError(fen, "en passant", "no %s pawn behind %s", core.OppositeColor(turn).Name(), target)
		}
		pos.EnPassant = EnPassant{Pawn: pawn.ID, Target: target}
	}

	if !counterPattern.MatchString(parts[4]) {
		return nil, fenError(fen, "halfmove", "must be a non-negative integer, got %q", parts[4])
	}
	if !counterPattern.MatchString(parts[5]) {
		return nil, fenError(fen, "fullmove", "must be a non-negative integer, got %q", parts[5])
	}
	var err error
	if pos.HalfMove, err = strconv.Atoi(parts[4]); err != nil {
		return nil, fenError(fen, "halfmove", "%v", err)
	}
	if pos.FullMove, err = strconv.Atoi(parts[5]); err != nil {
		return nil, fenError(fen, "fullmove", "%v", err)
	}

	inferMoved(pos)
	return pos, nil
}

// inferMoved marks pieces off their home squares as moved. Kings and rooks
// without a matching castling right are treated as moved too.
func inferMoved(pos *Position) {
	for _, p := range pos.Board.Pieces(Filter{}) {
		switch p.Kind {
		case Pawn:
			p.HasMoved = p.Square.Rank() != PawnRank(p.Color)
		case King:
			p.HasMoved = p.Square != KingHome(p.Color) || !pos.Castling.Any(p.Color)
		case Rook:
			switch p.Square {
			case RookHome(p.Color, true):
				p.HasMoved = !pos.Castling.Has(p.Color, true)
			case RookHome(p.Color, false):
				p.HasMoved = !pos.Castling.Has(p.Color, false)
			default:
				p.HasMoved = true
			}
		default:
			p.HasMoved = false
		}
	}
}

// FEN serializes the position
func (p *Position) FEN() string {
	var sb strings.Builder
	sb.WriteString(p.Board.Placement())
	sb.WriteByte(' ')
	sb.WriteString(p.Turn.String())
	sb.WriteByte(' ')
	sb.WriteString(p.Castling.String())
	sb.WriteByte(' ')
	if p.EnPassant.Valid() {
		sb.WriteString(p.EnPassant.Target.String())
	} else {
		sb.WriteByte('-')
	}
	fmt.Fprintf(&sb, " %d %d", p.HalfMove, p.FullMove)
	return sb.String()
}

// Placement renders the first FEN field
func (b *Board) Placement() string {
	var sb strings.Builder
	for rank := 7; rank >= 0; rank-- {
		empty := 0
		for file := 0; file < 8; file++ {
			piece := b.At(SquareAt(file, rank))
			if piece == nil {
				empty++
				continue
			}
			if empty > 0 {
				sb.WriteByte(byte('0' + empty))
				empty = 0
			}
			sb.WriteByte(piece.Letter())
		}
		if empty > 0 {
			sb.WriteByte(byte('0' + empty))
		}
		if rank > 0 {
			sb.WriteByte('/')
		}
	}
	return sb.String()
}

// ReducedFEN keeps placement, turn, castling and en passant; repetition compares on these
func ReducedFEN(fen string) string {
	parts := strings.Fields(fen)
	if len(parts) > 4 {
		parts = parts[:4]
	}
	return strings.Join(parts, " ")
}
