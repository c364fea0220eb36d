package navigation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bgv/internal/verification/menu"
	"bgv/internal/verification/models"
)

func success(m models.Method) models.Attempt {
	return models.Attempt{Method: m, Outcome: models.OutcomeSuccess, StatusCode: 1}
}

func notFound(m models.Method) models.Attempt {
	return models.Attempt{Method: m, Outcome: models.OutcomeNotFound, StatusCode: 1007}
}

func TestSelectCategory(t *testing.T) {
	m := New(menu.Build(models.ProviderStandard))

	t.Run("view all opens results", func(t *testing.T) {
		s, err := m.SelectCategory(Initial(), menu.CategoryViewAll, nil)
		require.NoError(t, err)
		assert.Equal(t, State{Panel: PanelAllResults}, s)
	})

	t.Run("direct category opens its form", func(t *testing.T) {
		s, err := m.SelectCategory(Initial(), menu.CategoryPassbook, nil)
		require.NoError(t, err)
		assert.Equal(t, State{Panel: PanelForm, Category: menu.CategoryPassbook, MethodKey: "passbook"}, s)
	})

	t.Run("unverified category opens submenu", func(t *testing.T) {
		history := models.History{notFound(models.MethodMobileToUAN)}
		s, err := m.SelectCategory(Initial(), menu.CategoryFetchUAN, history)
		require.NoError(t, err)
		assert.Equal(t, State{Panel: PanelSubmenu, Category: menu.CategoryFetchUAN}, s)
	})

	t.Run("verified sub-method skips ahead", func(t *testing.T) {
		history := models.History{notFound(models.MethodMobileToUAN), success(models.MethodPANToUAN)}
		s, err := m.SelectCategory(Initial(), menu.CategoryFetchUAN, history)
		require.NoError(t, err)
		assert.Equal(t, State{Panel: PanelForm, Category: menu.CategoryFetchUAN, MethodKey: menu.MethodKeyPAN}, s)
	})

	t.Run("unknown category fails fast", func(t *testing.T) {
		s, err := m.SelectCategory(Initial(), "reports", nil)
		require.ErrorIs(t, err, ErrUnknownCategory)
		assert.Equal(t, Initial(), s)
	})

	t.Run("only from main", func(t *testing.T) {
		_, err := m.SelectCategory(State{Panel: PanelAllResults}, menu.CategoryPassbook, nil)
		require.ErrorIs(t, err, ErrInvalidTransition)
	})
}

func TestSelectMethod(t *testing.T) {
	m := New(menu.Build(models.ProviderStandard))
	sub := State{Panel: PanelSubmenu, Category: menu.CategoryFetchUAN}

	s, err := m.SelectMethod(sub, menu.MethodKeyMobile)
	require.NoError(t, err)
	assert.Equal(t, State{Panel: PanelForm, Category: menu.CategoryFetchUAN, MethodKey: menu.MethodKeyMobile}, s)

	mc, ok := m.ActiveMethod(s)
	require.True(t, ok)
	assert.Equal(t, models.MethodMobileToUAN, mc.Method)

	_, err = m.SelectMethod(sub, "aadhaar")
	require.ErrorIs(t, err, ErrUnknownMethod)

	_, err = m.SelectMethod(Initial(), menu.MethodKeyMobile)
	require.ErrorIs(t, err, ErrInvalidTransition)
}

func TestBack(t *testing.T) {
	m := New(menu.Build(models.ProviderStandard))
	mobileForm := State{Panel: PanelForm, Category: menu.CategoryFetchUAN, MethodKey: menu.MethodKeyMobile}

	t.Run("form of unverified sub-method returns to submenu", func(t *testing.T) {
		s, err := m.Back(mobileForm, models.History{notFound(models.MethodMobileToUAN)})
		require.NoError(t, err)
		assert.Equal(t, State{Panel: PanelSubmenu, Category: menu.CategoryFetchUAN}, s)
	})

	t.Run("form of verified sub-method returns to main", func(t *testing.T) {
		s, err := m.Back(mobileForm, models.History{success(models.MethodMobileToUAN)})
		require.NoError(t, err)
		assert.Equal(t, Initial(), s)
	})

	t.Run("direct form returns to main", func(t *testing.T) {
		s, err := m.Back(State{Panel: PanelForm, Category: menu.CategoryLatestEmployment, MethodKey: "latestEmployment"}, nil)
		require.NoError(t, err)
		assert.Equal(t, Initial(), s)
	})

	t.Run("submenu and results return to main", func(t *testing.T) {
		for _, from := range []State{{Panel: PanelSubmenu, Category: menu.CategoryFetchUAN}, {Panel: PanelAllResults}} {
			s, err := m.Back(from, nil)
			require.NoError(t, err)
			assert.Equal(t, Initial(), s)
		}
	})

	t.Run("main has nowhere to go", func(t *testing.T) {
		_, err := m.Back(Initial(), nil)
		require.ErrorIs(t, err, ErrInvalidTransition)
	})
}

func TestSkipAheadHonoursLegacyKey(t *testing.T) {
	m := New(menu.Build(models.ProviderGL))
	history := models.History{success(models.MethodUANFullHistory)}

	s, err := m.SelectCategory(Initial(), menu.CategoryEmploymentHistory, history)
	require.NoError(t, err)
	mc, ok := m.ActiveMethod(s)
	require.True(t, ok)
	assert.Equal(t, models.MethodUANFullHistoryGL, mc.Method)

	back, err := m.Back(s, history)
	require.NoError(t, err)
	assert.Equal(t, Initial(), back)
}

func TestApply(t *testing.T) {
	m := New(menu.Build(models.ProviderStandard))
	s := Initial()
	var err error
	for _, e := range []Event{
		{Kind: EventSelectCategory, Key: string(menu.CategoryFetchUAN)},
		{Kind: EventSelectMethod, Key: menu.MethodKeyPAN},
		{Kind: EventBack},
	} {
		s, err = m.Apply(s, e, nil)
		require.NoError(t, err)
	}
	assert.Equal(t, State{Panel: PanelSubmenu, Category: menu.CategoryFetchUAN}, s)

	_, err = m.Apply(s, Event{Kind: "jump"}, nil)
	require.ErrorIs(t, err, ErrInvalidTransition)
}

func TestValidate(t *testing.T) {
	m := New(menu.Build(models.ProviderStandard))

	tests := []struct {
		name    string
		state   State
		wantErr error
	}{
		{"main", Initial(), nil},
		{"main with selection", State{Panel: PanelMain, Category: menu.CategoryPassbook}, ErrInvalidTransition},
		{"submenu", State{Panel: PanelSubmenu, Category: menu.CategoryFetchUAN}, nil},
		{"submenu of direct category", State{Panel: PanelSubmenu, Category: menu.CategoryPassbook}, ErrInvalidTransition},
		{"form", State{Panel: PanelForm, Category: menu.CategoryFetchUAN, MethodKey: menu.MethodKeyPAN}, nil},
		{"form with unknown method", State{Panel: PanelForm, Category: menu.CategoryFetchUAN, MethodKey: "x"}, ErrUnknownMethod},
		{"unknown category", State{Panel: PanelSubmenu, Category: "x"}, ErrUnknownCategory},
		{"unknown panel", State{Panel: "modal"}, ErrInvalidTransition},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := m.Validate(tt.state)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestMenuAndSkipAheadAgree(t *testing.T) {
	legacyHistory := success(models.MethodUANFullHistory)
	legacyHistory.StatusCode = 1018

	tests := []struct {
		name     string
		provider models.Provider
		history  models.History
		verified []menu.CategoryKey
	}{
		{"no attempts", models.ProviderGL, nil, nil},
		{"only failures", models.ProviderStandard, models.History{notFound(models.MethodMobileToUAN), notFound(models.MethodPANToUAN)}, nil},
		{"current key", models.ProviderStandard, models.History{success(models.MethodMobileToUAN)}, []menu.CategoryKey{menu.CategoryFetchUAN}},
		{"current key second sub-method", models.ProviderGL, models.History{notFound(models.MethodMobileToUAN), success(models.MethodPANToUAN)}, []menu.CategoryKey{menu.CategoryFetchUAN}},
		{"legacy key", models.ProviderGL, models.History{legacyHistory}, []menu.CategoryKey{menu.CategoryEmploymentHistory}},
		{"key of another provider", models.ProviderStandard, models.History{success(models.MethodUANFullHistoryGL)}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := menu.Build(tt.provider)
			m := New(cfg)
			var verified []menu.CategoryKey

			for _, cs := range menu.Annotate(cfg, tt.history) {
				s, err := m.SelectCategory(Initial(), cs.Key, tt.history)
				require.NoError(t, err)

				if cs.Direct {
					assert.Equal(t, PanelForm, s.Panel, cs.Key)
					continue
				}
				if !cs.Verified {
					assert.Equal(t, State{Panel: PanelSubmenu, Category: cs.Key}, s, cs.Key)
					continue
				}
				var firstVerified string
				for _, ms := range cs.Methods {
					if ms.Verified {
						firstVerified = ms.Key
						break
					}
				}
				assert.Equal(t, State{Panel: PanelForm, Category: cs.Key, MethodKey: firstVerified}, s, cs.Key)
			}

			for _, cs := range menu.Annotate(cfg, tt.history) {
				if cs.Verified {
					verified = append(verified, cs.Key)
				}
				if cs.Direct {
					continue
				}
				for _, ms := range cs.Methods {
					form := State{Panel: PanelForm, Category: cs.Key, MethodKey: ms.Key}
					s, err := m.Back(form, tt.history)
					require.NoError(t, err)
					assert.Equal(t, ms.Verified, s.Panel == PanelMain, ms.Key)
				}
			}
			assert.Equal(t, tt.verified, verified)
		})
	}
}
