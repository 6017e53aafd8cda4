package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClean(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		variant Variant
		want    string
	}{
		{
			name:    "line comment",
			input:   "int x = 1; // set x\nint y = 2;",
			variant: Token,
			want:    "int x = 1; int y = 2;",
		},
		{
			name:    "hash comment stripped for tokens",
			input:   "x = 1  # note\ny = 2",
			variant: Token,
			want:    "x = 1 y = 2",
		},
		{
			name:    "hash kept for structure",
			input:   "#include <stdio.h>\nint main() {}",
			variant: Structure,
			want:    "#include <stdio.h> int main() {}",
		},
		{
			name:    "block comment spans lines",
			input:   "int a; /* first\n second */ int b;",
			variant: Structure,
			want:    "int a; int b;",
		},
		{
			name:    "first terminator closes block",
			input:   "a /* x /* y */ b */ c",
			variant: Structure,
			want:    "a b */ c",
		},
		{
			name:    "tabs and blank lines collapse",
			input:   "\tif (x)\n\n\t\treturn;\n",
			variant: Token,
			want:    " if (x) return; ",
		},
		{
			name:    "comment marker inside string is still a comment",
			input:   `char *url = "http://example.com";`,
			variant: Structure,
			want:    `char *url = "http:`,
		},
		{
			name:    "empty",
			input:   "",
			variant: Token,
			want:    "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Clean(tt.input, tt.variant))
		})
	}
}

func TestCleanIdempotent(t *testing.T) {
	inputs := []string{
		"int main() {\n\treturn 0; // done\n}\n",
		"/* header */\nclass A {\n  # not python\n};",
		"def f(x):\n    # comment\n    return x  # trailing\n",
		"a //*b*/ c\n d /* e */ f",
		"   leading and trailing   ",
		"x /* unterminated\n y",
	}

	for _, in := range inputs {
		for _, v := range []Variant{Token, Structure} {
			once := Clean(in, v)
			assert.Equal(t, once, Clean(once, v), "variant %s input %q", v, in)
		}
	}
}
