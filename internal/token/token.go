package token

// Token defines how many units are required per draw
type Token struct {
	Name       string `json:"name"`         // e.g. "Stellar Jade", "Star Rail Pass"
	PerDraw    int    `json:"per_draw"`     // tokens per single draw, e.g. 160
	PerTenDraw int    `json:"per_ten_draw"` // optional; if 0 -> equal to 10 * PerDraw, a special case of PerNDraw
	PerNDraw   int    `json:"per_n_draw"`   // optional; if 0 -> equal to N * PerDraw
	N          int    `json:"n"`            // optional; if 0, not adoptive to this token
}

// Default is the standard banner currency.
func Default() Token {
	return Token{Name: "Stellar Jade", PerDraw: 160, PerTenDraw: 1600}
}

// TokensForDraws returns how many tokens are required for n draws
func (t Token) TokensForDraws(n int) int {
	if n <= 0 {
		return 0
	}
	if t.PerTenDraw > 0 && n >= 10 && t.N <= 1 {
		tens := n / 10
		remTens := n % 10
		return tens*t.PerTenDraw + remTens*t.PerDraw
	}
	if t.PerNDraw > 0 && n >= t.N && t.N > 1 {
		ns := n / t.N
		rem := n % t.N
		return ns*t.PerNDraw + rem*t.PerDraw
	}
	return n * t.PerDraw
}
