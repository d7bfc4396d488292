package safetymodule

import (
	"errors"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"

	nativecommon "perpsafety/native/common"
)

var (
	testGovernor = common.HexToAddress("0x00000000000000000000000000000000000000aa")
	testModule   = common.HexToAddress("0x00000000000000000000000000000000000000bb")
	testEscrow   = common.HexToAddress("0x00000000000000000000000000000000000000cc")
	testToken    = common.HexToAddress("0x0000000000000000000000000000000000000011")
	testUser     = common.HexToAddress("0x0000000000000000000000000000000000000099")
)

type fakeStakedToken struct {
	underlying common.Address
	balances   map[common.Address]*big.Int
	slashed    *big.Int
	returned   *big.Int
	settled    int
	slashErr   error
}

func newFakeStakedToken() *fakeStakedToken {
	return &fakeStakedToken{
		underlying: common.HexToAddress("0x0000000000000000000000000000000000000012"),
		balances:   make(map[common.Address]*big.Int),
	}
}

func (f *fakeStakedToken) Underlying() common.Address { return f.underlying }

func (f *fakeStakedToken) BalanceOf(user common.Address) (*big.Int, error) {
	if bal, ok := f.balances[user]; ok {
		return new(big.Int).Set(bal), nil
	}
	return big.NewInt(0), nil
}

func (f *fakeStakedToken) TotalSupply() (*big.Int, error) {
	total := big.NewInt(0)
	for _, bal := range f.balances {
		total.Add(total, bal)
	}
	return total, nil
}

func (f *fakeStakedToken) Slash(destination common.Address, amount *big.Int) (*big.Int, error) {
	if f.slashErr != nil {
		return nil, f.slashErr
	}
	f.slashed = new(big.Int).Set(amount)
	return new(big.Int).Set(amount), nil
}

func (f *fakeStakedToken) ReturnFunds(from common.Address, amount *big.Int) error {
	f.returned = new(big.Int).Set(amount)
	return nil
}

func (f *fakeStakedToken) SettleSlashing() error {
	f.settled++
	return nil
}

type fakeDistributor struct {
	calls []struct {
		market, user common.Address
		position     *big.Int
	}
}

func (f *fakeDistributor) UpdatePosition(caller, market, user common.Address, newPosition *big.Int) error {
	f.calls = append(f.calls, struct {
		market, user common.Address
		position     *big.Int
	}{market, user, new(big.Int).Set(newPosition)})
	return nil
}

type fakeAuctionHouse struct {
	nextID uint64
	token  common.Address
	err    error
}

func (f *fakeAuctionHouse) StartAuction(caller, token common.Address, lotPrice, initialLotSize *big.Int, numLots uint64, lotIncreaseIncrement *big.Int, lotIncreasePeriod, timeLimit uint64) (uint64, error) {
	if f.err != nil {
		return 0, f.err
	}
	f.nextID++
	f.token = token
	return f.nextID, nil
}

func newTestModule(t *testing.T) (*Module, *fakeStakedToken, *fakeDistributor, *fakeAuctionHouse) {
	t.Helper()
	m, err := NewModule(testGovernor, testModule, testEscrow, 1000, 500)
	if err != nil {
		t.Fatalf("NewModule: %v", err)
	}
	m.SetNowFunc(func() uint64 { return 5000 })
	token := newFakeStakedToken()
	if err := m.RegisterStakedToken(testGovernor, testToken, token); err != nil {
		t.Fatalf("RegisterStakedToken: %v", err)
	}
	dist := &fakeDistributor{}
	m.SetDistributor(dist)
	house := &fakeAuctionHouse{}
	m.SetAuctionHouse(house)
	return m, token, dist, house
}

func testAuctionParams() AuctionParams {
	return AuctionParams{
		LotPrice:             big.NewInt(100),
		InitialLotSize:       big.NewInt(10),
		NumLots:              5,
		LotIncreaseIncrement: big.NewInt(1),
		LotIncreasePeriod:    3600,
		TimeLimit:            86400,
	}
}

func TestRegisterStakedTokenDuplicate(t *testing.T) {
	m, _, _, _ := newTestModule(t)
	if err := m.RegisterStakedToken(testGovernor, testToken, newFakeStakedToken()); !errors.Is(err, ErrTokenAlreadyRegistered) {
		t.Fatalf("expected ErrTokenAlreadyRegistered, got %v", err)
	}
	if err := m.RegisterStakedToken(testUser, common.HexToAddress("0x22"), newFakeStakedToken()); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}

func TestRemoveStakedTokenSwapsLast(t *testing.T) {
	m, _, _, _ := newTestModule(t)
	second := common.HexToAddress("0x0000000000000000000000000000000000000022")
	third := common.HexToAddress("0x0000000000000000000000000000000000000033")
	if err := m.RegisterStakedToken(testGovernor, second, newFakeStakedToken()); err != nil {
		t.Fatalf("register second: %v", err)
	}
	if err := m.RegisterStakedToken(testGovernor, third, newFakeStakedToken()); err != nil {
		t.Fatalf("register third: %v", err)
	}
	if err := m.RemoveStakedToken(testGovernor, testToken); err != nil {
		t.Fatalf("remove: %v", err)
	}
	tokens := m.StakedTokens()
	if len(tokens) != 2 {
		t.Fatalf("expected 2 tokens, got %d", len(tokens))
	}
	if tokens[0] != third {
		t.Fatalf("expected last token swapped into slot 0, got %s", tokens[0].Hex())
	}
	if _, err := m.CurrentPosition(testUser, testToken); !errors.Is(err, ErrTokenNotRegistered) {
		t.Fatalf("expected ErrTokenNotRegistered after removal, got %v", err)
	}
}

func TestUpdateStakingPositionForwards(t *testing.T) {
	m, _, dist, _ := newTestModule(t)
	if err := m.UpdateStakingPosition(testToken, testUser, big.NewInt(75)); err != nil {
		t.Fatalf("UpdateStakingPosition: %v", err)
	}
	if len(dist.calls) != 1 {
		t.Fatalf("expected 1 distributor call, got %d", len(dist.calls))
	}
	call := dist.calls[0]
	if call.market != testToken || call.user != testUser || call.position.Cmp(big.NewInt(75)) != 0 {
		t.Fatalf("unexpected forwarded call: %+v", call)
	}
}

func TestUpdateStakingPositionRejectsUnknownCaller(t *testing.T) {
	m, _, _, _ := newTestModule(t)
	if err := m.UpdateStakingPosition(testUser, testUser, big.NewInt(1)); !errors.Is(err, ErrTokenNotRegistered) {
		t.Fatalf("expected ErrTokenNotRegistered, got %v", err)
	}
}

func TestSlashAndStartAuction(t *testing.T) {
	m, token, _, house := newTestModule(t)
	id, err := m.SlashAndStartAuction(testGovernor, testToken, big.NewInt(50), testAuctionParams())
	if err != nil {
		t.Fatalf("SlashAndStartAuction: %v", err)
	}
	if token.slashed == nil || token.slashed.Cmp(big.NewInt(50)) != 0 {
		t.Fatalf("expected 50 slashed, got %v", token.slashed)
	}
	if house.token != token.underlying {
		t.Fatalf("auction should sell the underlying asset, got %s", house.token.Hex())
	}
	if _, ok := m.PendingSettlement(id); !ok {
		t.Fatalf("expected pending settlement for auction %d", id)
	}
}

func TestSlashAndStartAuctionGuards(t *testing.T) {
	m, token, _, _ := newTestModule(t)
	if _, err := m.SlashAndStartAuction(testUser, testToken, big.NewInt(1), testAuctionParams()); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
	if _, err := m.SlashAndStartAuction(testGovernor, testToken, big.NewInt(0), testAuctionParams()); !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("expected ErrInvalidAmount, got %v", err)
	}
	token.slashErr = errors.New("vault sealed")
	if _, err := m.SlashAndStartAuction(testGovernor, testToken, big.NewInt(1), testAuctionParams()); err == nil {
		t.Fatal("expected slash error to propagate")
	}
}

func TestAuctionEndedSettles(t *testing.T) {
	m, token, _, _ := newTestModule(t)
	id, err := m.SlashAndStartAuction(testGovernor, testToken, big.NewInt(50), testAuctionParams())
	if err != nil {
		t.Fatalf("SlashAndStartAuction: %v", err)
	}
	if err := m.AuctionEnded(id, big.NewInt(20), big.NewInt(3000)); err != nil {
		t.Fatalf("AuctionEnded: %v", err)
	}
	if token.returned == nil || token.returned.Cmp(big.NewInt(20)) != 0 {
		t.Fatalf("expected 20 returned, got %v", token.returned)
	}
	if token.settled != 1 {
		t.Fatalf("expected slashing settled once, got %d", token.settled)
	}
	if _, ok := m.PendingSettlement(id); ok {
		t.Fatal("settlement should be cleared")
	}
	if err := m.AuctionEnded(id, big.NewInt(0), big.NewInt(0)); !errors.Is(err, ErrNoPendingSettlement) {
		t.Fatalf("expected ErrNoPendingSettlement on repeat, got %v", err)
	}
}

func TestSettleTerminatedAuction(t *testing.T) {
	m, token, _, _ := newTestModule(t)
	id, err := m.SlashAndStartAuction(testGovernor, testToken, big.NewInt(50), testAuctionParams())
	if err != nil {
		t.Fatalf("SlashAndStartAuction: %v", err)
	}
	if err := m.SettleTerminatedAuction(testUser, id, big.NewInt(50), big.NewInt(0)); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
	if err := m.SettleTerminatedAuction(testGovernor, id, big.NewInt(50), big.NewInt(0)); err != nil {
		t.Fatalf("SettleTerminatedAuction: %v", err)
	}
	if token.settled != 1 {
		t.Fatalf("expected slashing settled, got %d", token.settled)
	}
}

func TestCooldownWindow(t *testing.T) {
	m, _, _, _ := newTestModule(t)
	now := uint64(5000)
	m.SetNowFunc(func() uint64 { return now })
	if err := m.CheckRedeemWindow(testUser); !errors.Is(err, ErrCooldownNotStarted) {
		t.Fatalf("expected ErrCooldownNotStarted, got %v", err)
	}
	if err := m.StartCooldown(testUser); err != nil {
		t.Fatalf("StartCooldown: %v", err)
	}
	if err := m.CheckRedeemWindow(testUser); !errors.Is(err, ErrCooldownNotElapsed) {
		t.Fatalf("expected ErrCooldownNotElapsed, got %v", err)
	}
	now = 6000
	if err := m.CheckRedeemWindow(testUser); err != nil {
		t.Fatalf("expected redeem allowed at cooldown boundary, got %v", err)
	}
	now = 6500
	if err := m.CheckRedeemWindow(testUser); err != nil {
		t.Fatalf("expected redeem allowed at window close, got %v", err)
	}
	now = 6501
	if err := m.CheckRedeemWindow(testUser); !errors.Is(err, ErrUnstakeWindowClosed) {
		t.Fatalf("expected ErrUnstakeWindowClosed, got %v", err)
	}
	m.ClearCooldown(testUser)
	if _, ok := m.CooldownStart(testUser); ok {
		t.Fatal("cooldown should be cleared")
	}
}

func TestPauseComposition(t *testing.T) {
	m, _, _, _ := newTestModule(t)
	if err := m.SetPaused(testUser, true); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
	if err := m.SetPaused(testGovernor, true); err != nil {
		t.Fatalf("SetPaused: %v", err)
	}
	if err := m.UpdateStakingPosition(testToken, testUser, big.NewInt(1)); !errors.Is(err, nativecommon.ErrModulePaused) {
		t.Fatalf("expected ErrModulePaused, got %v", err)
	}
	if err := m.SetPaused(testGovernor, false); err != nil {
		t.Fatalf("SetPaused: %v", err)
	}
	m.SetControllerPauses(nativecommon.FlagPause{Paused: true})
	if !m.IsPaused("safetymodule") {
		t.Fatal("controller pause should propagate")
	}
	if _, err := m.SlashAndStartAuction(testGovernor, testToken, big.NewInt(1), testAuctionParams()); !errors.Is(err, nativecommon.ErrModulePaused) {
		t.Fatalf("expected ErrModulePaused, got %v", err)
	}
}
