package selection

import (
	"errors"
	"testing"

	"github.com/HerbHall/drivermatch/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func request(required float64, volt int) Request {
	return Request{
		RequiredWattage: required,
		RequiredVoltage: volt,
		Location:        models.LocationBoth,
		Params:          DefaultParams(),
	}
}

func TestRecommend_SinglesAndCombinations(t *testing.T) {
	catalog := []models.DriverUnit{
		unit("Slim", 12, 100),
		unit("Slim", 12, 200),
		unit("Slim", 12, 210),
	}

	res, err := Recommend(catalog, request(190, 12))
	require.NoError(t, err)
	assert.True(t, res.SingleAvailable)
	require.NotNil(t, res.Nearest)
	assert.Equal(t, 200.0, res.Nearest.Wattage)
	assert.Nil(t, res.NearestHint)

	require.Len(t, res.Options, 3)
	assert.Equal(t, "Slim (200W)", res.Options[0].Label)
	assert.True(t, res.Options[0].BestSingle)
	assert.Equal(t, "Slim (100W) + Slim (100W)", res.Options[1].Label)
	assert.True(t, res.Options[1].BestCombination)
	assert.Equal(t, "Slim (210W)", res.Options[2].Label)
}

func TestRecommend_RequiresMultiple(t *testing.T) {
	req := request(190, 12)
	req.RequiresMultiple = true

	res, err := Recommend([]models.DriverUnit{unit("Solo", 12, 200)}, req)
	require.NoError(t, err)
	assert.False(t, res.SingleAvailable)
	assert.Empty(t, res.Options, "a doubled 200 W unit exceeds the ceiling")
	require.NotNil(t, res.NearestHint)
	assert.Equal(t, 10.0, res.NearestHint.Difference)
}

func TestRecommend_EmptyCatalog(t *testing.T) {
	res, err := Recommend(nil, request(190, 12))
	require.NoError(t, err)
	assert.Empty(t, res.Options)
	assert.Nil(t, res.Nearest)
	assert.Nil(t, res.NearestHint)
	assert.False(t, res.SingleAvailable)
}

func TestRecommend_ZeroLoad(t *testing.T) {
	res, err := Recommend([]models.DriverUnit{unit("Any", 12, 60)}, request(0, 12))
	require.NoError(t, err)
	assert.Empty(t, res.Options)
	assert.Nil(t, res.NearestHint)
}

func TestRecommend_NearestHintWhenNothingFits(t *testing.T) {
	catalog := []models.DriverUnit{unit("Small", 12, 50), unit("Medium", 12, 120)}

	res, err := Recommend(catalog, request(190, 12))
	require.NoError(t, err)
	assert.Empty(t, res.Options)
	require.NotNil(t, res.NearestHint)
	assert.Equal(t, "Medium", res.NearestHint.Unit.Name)
	assert.Equal(t, -70.0, res.NearestHint.Difference)
}

func TestRecommend_LocationFilter(t *testing.T) {
	catalog := []models.DriverUnit{
		placed(unit("In", 12, 200), models.LocationIndoor),
		placed(unit("Out", 12, 205), models.LocationOutdoor),
	}
	req := request(190, 12)
	req.Location = "Outdoor"

	res, err := Recommend(catalog, req)
	require.NoError(t, err)
	for _, opt := range res.Options {
		for _, u := range opt.Units {
			assert.Equal(t, "Out", u.Name)
		}
	}
	require.NotNil(t, res.Nearest)
	assert.Equal(t, "Out", res.Nearest.Name)
}

func TestParams_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Params)
		ok     bool
	}{
		{"defaults", func(*Params) {}, true},
		{"negative tolerance", func(p *Params) { p.TolerancePercent = -1 }, false},
		{"negative percentage diff", func(p *Params) { p.MaxPercentageDiff = -1 }, false},
		{"zero max results", func(p *Params) { p.MaxResults = 0 }, false},
		{"negative pool", func(p *Params) { p.MaxPool = -3 }, false},
		{"bad preset", func(p *Params) { p.Presets = PresetTable{{Wattage: 0}} }, false},
		{"preset without targets", func(p *Params) { p.Presets = PresetTable{{Wattage: 240}} }, false},
		{"preset with empty target", func(p *Params) { p.Presets = PresetTable{{Wattage: 240, Targets: [][]float64{{}}}} }, false},
		{"preset with zero wattage target", func(p *Params) {
			p.Presets = PresetTable{{Wattage: 240, Targets: [][]float64{{200, 0}}}}
		}, false},
		{"no presets", func(p *Params) { p.Presets = nil }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := DefaultParams()
			tt.mutate(&p)
			err := p.Validate()
			if tt.ok {
				assert.NoError(t, err)
				return
			}
			assert.True(t, errors.Is(err, ErrInvalidParams), "err = %v", err)
		})
	}
}

func TestRecommend_InvalidParams(t *testing.T) {
	req := request(190, 12)
	req.Params.MaxResults = 0

	_, err := Recommend(nil, req)
	assert.ErrorIs(t, err, ErrInvalidParams)
}
