package league

import "github.com/mcoot/versusleague/internal/model"

// Guard admits a mutating call. The pause check runs first so a paused
// registry rejects everyone, the admin included, unless the operation is
// pause-exempt.
func Guard(admin model.Address, paused bool, sender model.Address, pauseExempt bool) error {
	if paused && !pauseExempt {
		return model.ErrContractPaused
	}
	if sender != admin {
		return model.ErrUnauthorized
	}
	return nil
}

func (g *Governance) guard(sender model.Address, pauseExempt bool) error {
	return Guard(g.Admin, g.Paused, sender, pauseExempt)
}
