package config

import (
	"testing"

	"github.com/stretchr/testify/require"
)

type renderCase struct {
	name          string
	contents      []string
	envVars       map[string]string
	expected      string
	expectedError error
}

func runRenderCases(t *testing.T, cases []renderCase) {
	t.Helper()
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			data := make([]FileData, 0, len(tc.contents))
			for _, c := range tc.contents {
				data = append(data, FileData{Name: tc.name, Content: c})
			}
			renderer := NewConfigRender(data, "TXRELAY")
			renderer.LookupEnvFunc = func(key string) (string, bool) {
				v, ok := tc.envVars[key]
				return v, ok
			}
			res, err := renderer.Render()
			if tc.expectedError != nil {
				require.ErrorIs(t, err, tc.expectedError)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tc.expected, res)
		})
	}
}

func TestConfigRenderMerge(t *testing.T) {
	runRenderCases(t, []renderCase{
		{
			name:     "two files",
			contents: []string{"A=1\n", "B=2\n"},
			expected: "A = 1\nB = 2\n",
		},
		{
			name:     "later files override",
			contents: []string{"A=1\n", "A=2\nB=2\n", "A=3\nC=3\n"},
			expected: "A = 3\nB = 2\nC = 3\n",
		},
		{
			name:          "undefined var",
			contents:      []string{"A=1\n", "A={{VAR}}\nC=3\n"},
			expectedError: ErrMissingVars,
		},
	})
}

func TestConfigRenderCycles(t *testing.T) {
	runRenderCases(t, []renderCase{
		{
			name:          "self reference",
			contents:      []string{"A= {{A}}\n"},
			expectedError: ErrCycleVars,
		},
		{
			name:          "two vars",
			contents:      []string{"A= {{B}}\n", "B= {{A}}\n"},
			expectedError: ErrCycleVars,
		},
		{
			name:          "three vars",
			contents:      []string{"A= {{B}}\n", "B= {{C}}\nC={{A}}\n"},
			expectedError: ErrCycleVars,
		},
		{
			name:     "broken by env var",
			contents: []string{"A= {{B}}\n", "B= {{A}}\n"},
			envVars:  map[string]string{"TXRELAY_B": "3"},
			expected: "A = 3\nB = 3\n",
		},
	})
}

func TestConfigRenderValues(t *testing.T) {
	runRenderCases(t, []renderCase{
		{
			name:     "bare var keeps the type",
			contents: []string{"INT_VALUE={{MY_INT}}\nFLAG={{MY_BOOL}}\n", "MY_INT=4\nMY_BOOL=true\n"},
			expected: "FLAG = true\nINT_VALUE = 4\nMY_BOOL = true\nMY_INT = 4\n",
		},
		{
			name:     "quoted var",
			contents: []string{"URL = \"{{HOST}}:8545\"\nHOST = \"http://localhost\"\n"},
			expected: "HOST = \"http://localhost\"\nURL = \"http://localhost:8545\"\n",
		},
		{
			name:     "chained vars",
			contents: []string{"A = {{B}}\nB = {{C}}\nC = 7\n"},
			expected: "A = 7\nB = 7\nC = 7\n",
		},
		{
			name:     "env var wins over the file",
			contents: []string{"B = {{A}}\nA = 1\n"},
			envVars:  map[string]string{"TXRELAY_A": "9"},
			expected: "A = 1\nB = 9\n",
		},
	})
}

func TestConfigRenderGetVars(t *testing.T) {
	renderer := NewConfigRender(nil, EnvVarPrefix)
	require.Equal(t, []string{"A", "B"}, renderer.GetVars("X = {{A}}\nY = \"{{B}}\"\nZ = {{A}}\n"))
	require.Empty(t, renderer.GetVars("X = 1\n"))
}

func TestConfigRenderConvertFileToToml(t *testing.T) {
	res, err := convertFileToToml(`{"Transport": {"URL": "ws://node:8546"}}`, "json")
	require.NoError(t, err)
	require.Contains(t, res, "[Transport]")
	require.Contains(t, res, `URL = "ws://node:8546"`)

	_, err = convertFileToToml("a: 1", "yaml")
	require.ErrorIs(t, err, ErrUnsupportedConfigFileType)

	res, err = convertFileToToml("A = 1", "conf")
	require.NoError(t, err)
	require.Equal(t, "A = 1", res)
}
