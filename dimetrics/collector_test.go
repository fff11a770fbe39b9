package dimetrics_test

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sectrean/di-graph"
	"github.com/sectrean/di-graph/dimetrics"
	"github.com/sectrean/di-graph/internal/errors"
	"github.com/sectrean/di-graph/internal/testtypes"
)

func setup(t *testing.T, opts ...dimetrics.Option) (*prometheus.Registry, *di.Plugins, *dimetrics.Collector) {
	t.Helper()

	reg := prometheus.NewRegistry()
	plugins := di.NewPlugins()

	c := dimetrics.NewCollector(opts...)
	c.Install(plugins)
	require.NoError(t, reg.Register(c))

	return reg, plugins, c
}

func Test_Collector(t *testing.T) {
	component, err := di.NewComponent("app", func(b *di.ComponentBuilder) error {
		return errors.Join(
			di.Provide(b, di.Singleton, testtypes.ProvideInterfaceA),
			di.Provide(b, di.Prototype, testtypes.ProvideInterfaceB),
			b.Subcomponent("request", nil),
		)
	})
	require.NoError(t, err)

	t.Run("constructed instances", func(t *testing.T) {
		reg, plugins, _ := setup(t)

		g, err := component.CreateGraph(di.WithPlugins(plugins))
		require.NoError(t, err)

		for range 3 {
			_, err = di.Resolve[testtypes.InterfaceB](g)
			require.NoError(t, err)
		}

		assert.Equal(t, 1.0, counterValue(t, reg, "di_instances_constructed_total",
			map[string]string{"scope": "Singleton", "type": "*testtypes.StructA"}))
		assert.Equal(t, 3.0, counterValue(t, reg, "di_instances_constructed_total",
			map[string]string{"scope": "Prototype", "type": "*testtypes.StructB"}))
	})

	t.Run("disposed graphs", func(t *testing.T) {
		reg, plugins, _ := setup(t, dimetrics.WithNamespace("app"))

		g, err := component.CreateGraph(di.WithPlugins(plugins))
		require.NoError(t, err)

		_, err = g.OpenSubgraph("request")
		require.NoError(t, err)

		require.NoError(t, g.Dispose())

		assert.Equal(t, 1.0, counterValue(t, reg, "app_graphs_disposed_total",
			map[string]string{"qualifier": "app"}))
		assert.Equal(t, 1.0, counterValue(t, reg, "app_graphs_disposed_total",
			map[string]string{"qualifier": "request"}))
	})

	t.Run("const labels", func(t *testing.T) {
		reg, plugins, _ := setup(t, dimetrics.WithConstLabels(prometheus.Labels{"service": "test"}))

		g, err := component.CreateGraph(di.WithPlugins(plugins))
		require.NoError(t, err)

		_, err = di.Resolve[testtypes.InterfaceA](g)
		require.NoError(t, err)

		assert.Equal(t, 1.0, counterValue(t, reg, "di_instances_constructed_total",
			map[string]string{"scope": "Singleton", "type": "*testtypes.StructA", "service": "test"}))
	})

	t.Run("uninstall", func(t *testing.T) {
		reg, plugins, c := setup(t)
		c.Uninstall(plugins)
		assert.Equal(t, 0, plugins.Len())

		g, err := component.CreateGraph(di.WithPlugins(plugins))
		require.NoError(t, err)

		_, err = di.Resolve[testtypes.InterfaceA](g)
		require.NoError(t, err)

		assert.Equal(t, 0.0, counterValue(t, reg, "di_instances_constructed_total",
			map[string]string{"scope": "Singleton", "type": "*testtypes.StructA"}))
	})
}

// counterValue returns the value of the counter with the name and labels, or 0 if it does not exist.
func counterValue(t *testing.T, reg *prometheus.Registry, name string, labels map[string]string) float64 {
	t.Helper()

	families, err := reg.Gather()
	require.NoError(t, err)

	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
		for _, m := range mf.GetMetric() {
			if labelsMatch(m.GetLabel(), labels) {
				return m.GetCounter().GetValue()
			}
		}
	}
	return 0
}

func labelsMatch(pairs []*dto.LabelPair, labels map[string]string) bool {
	if len(pairs) != len(labels) {
		return false
	}
	for _, p := range pairs {
		if labels[p.GetName()] != p.GetValue() {
			return false
		}
	}
	return true
}
