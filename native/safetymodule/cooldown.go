package safetymodule

import "github.com/ethereum/go-ethereum/common"

// StartCooldown records the start of a user's unstake cooldown. Restarting
// an active cooldown resets the clock.
func (m *Module) StartCooldown(user common.Address) error {
	if err := m.guard(); err != nil {
		return err
	}
	if user == (common.Address{}) {
		return ErrZeroAddress
	}
	now := m.now()
	m.cooldowns[user] = now
	m.emit(newCooldownStartedEvent(user, now))
	return nil
}

// CheckRedeemWindow reports whether the user may unstake right now. The
// cooldown must have elapsed and the unstake window that follows it must not
// have closed.
func (m *Module) CheckRedeemWindow(user common.Address) error {
	start, ok := m.cooldowns[user]
	if !ok {
		return ErrCooldownNotStarted
	}
	now := m.now()
	if now < start+m.cooldownSeconds {
		return ErrCooldownNotElapsed
	}
	if m.unstakeWindow > 0 && now > start+m.cooldownSeconds+m.unstakeWindow {
		return ErrUnstakeWindowClosed
	}
	return nil
}

// ClearCooldown drops a user's cooldown record, typically after a redeem.
func (m *Module) ClearCooldown(user common.Address) {
	delete(m.cooldowns, user)
}

// CooldownStart returns the recorded cooldown start for a user.
func (m *Module) CooldownStart(user common.Address) (uint64, bool) {
	start, ok := m.cooldowns[user]
	return start, ok
}
