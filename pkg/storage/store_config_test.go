package storage

import (
	"testing"

	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestDBConfigurationYAML(t *testing.T) {
	data := `
Type: leveldb
LevelDBOptions:
  DataDirectoryPath: ./chains/unit
  ReadOnly: true
BoltDBOptions:
  FilePath: ./chains/unit.bolt
`
	var cfg DBConfiguration
	require.NoError(t, yaml.Unmarshal([]byte(data), &cfg))
	require.Equal(t, DBConfiguration{
		Type: "leveldb",
		LevelDBOptions: LevelDBOptions{
			DataDirectoryPath: "./chains/unit",
			ReadOnly:          true,
		},
		BoltDBOptions: BoltDBOptions{
			FilePath: "./chains/unit.bolt",
		},
	}, cfg)

	out, err := yaml.Marshal(cfg)
	require.NoError(t, err)
	var restored DBConfiguration
	require.NoError(t, yaml.Unmarshal(out, &restored))
	require.Equal(t, cfg, restored)
}
