package selector_test

import (
	"errors"
	"testing"

	"github.com/ardanlabs/dispatch/foundation/selector"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

func TestCanonicalize(t *testing.T) {
	type table struct {
		name      string
		raw       string
		canonical string
	}

	tt := []table{
		{"no params", "callReinforcements1()", "callReinforcements1()"},
		{"param names", "foo(uint256 amount, address recipient)", "foo(uint256,address)"},
		{"blank list", "bar( )", "bar()"},
		{"location keywords", "store(bytes memory data, string calldata label)", "store(bytes,string)"},
		{"indexed", "Transfer(address indexed from, address indexed to, uint256 value)", "Transfer(address,address,uint256)"},
		{"payable address", "send(address payable to)", "send(address)"},
		{"aliases", "set(uint x, int[] ys)", "set(uint256,int256[])"},
		{"array spacing", "sum(uint256 [ 3 ] values, bytes32 [] ids)", "sum(uint256[3],bytes32[])"},
		{"tuple", "f((uint256 a, address b)[] items, bytes32 root)", "f((uint256,address)[],bytes32)"},
		{"tuple keyword", "g(tuple(uint256, (bool, bytes) inner) memory t)", "g((uint256,(bool,bytes)))"},
		{"declaration", "function transfer(address to, uint256 amount) external returns (bool)", "transfer(address,uint256)"},
		{"outer whitespace", "  \tapprove ( address spender ,uint256 value )  ", "approve(address,uint256)"},
	}

	t.Log("Given the need to canonicalize function signatures.")
	{
		for testID, tst := range tt {
			t.Logf("\tTest %d:\tWhen handling %s.", testID, tst.name)
			{
				f := func(t *testing.T) {
					got, err := selector.Canonicalize(tst.raw)
					if err != nil {
						t.Fatalf("\t%s\tTest %d:\tShould be able to canonicalize %q: %s", failed, testID, tst.raw, err)
					}
					t.Logf("\t%s\tTest %d:\tShould be able to canonicalize %q.", success, testID, tst.raw)

					if got != tst.canonical {
						t.Logf("\t\tTest %d:\tgot: %s", testID, got)
						t.Logf("\t\tTest %d:\texp: %s", testID, tst.canonical)
						t.Fatalf("\t%s\tTest %d:\tShould get back the canonical form.", failed, testID)
					}
					t.Logf("\t%s\tTest %d:\tShould get back the canonical form.", success, testID)

					again, err := selector.Canonicalize(got)
					if err != nil {
						t.Fatalf("\t%s\tTest %d:\tShould be able to canonicalize the canonical form: %s", failed, testID, err)
					}

					if again != got {
						t.Fatalf("\t%s\tTest %d:\tShould get the canonical form back unchanged: %s", failed, testID, again)
					}
					t.Logf("\t%s\tTest %d:\tShould get the canonical form back unchanged.", success, testID)
				}

				t.Run(tst.name, f)
			}
		}
	}
}

func TestMalformed(t *testing.T) {
	tt := []struct {
		name string
		raw  string
	}{
		{"empty", ""},
		{"no list", "foo"},
		{"empty name", "(uint256)"},
		{"bad name", "1foo(uint256)"},
		{"unclosed", "foo(uint256"},
		{"extra close", "foo(uint256))"},
		{"nested unclosed", "foo((uint256,address)"},
		{"empty param", "foo(uint256,)"},
		{"keyword only", "foo(memory)"},
		{"too many tokens", "foo(uint256 a b)"},
		{"bad dimension", "foo(uint256[x])"},
		{"bad type", "foo(uint-256)"},
	}

	t.Log("Given the need to reject signatures that can't be parsed.")
	{
		for testID, tst := range tt {
			t.Logf("\tTest %d:\tWhen handling %s.", testID, tst.name)
			{
				f := func(t *testing.T) {
					_, err := selector.Canonicalize(tst.raw)
					if !errors.Is(err, selector.ErrMalformedSignature) {
						t.Fatalf("\t%s\tTest %d:\tShould get a malformed signature error for %q: %v", failed, testID, tst.raw, err)
					}
					t.Logf("\t%s\tTest %d:\tShould get a malformed signature error for %q.", success, testID, tst.raw)
				}

				t.Run(tst.name, f)
			}
		}
	}
}

func TestCompute(t *testing.T) {
	tt := []struct {
		signature string
		selector  string
	}{
		{"transfer(address,uint256)", "0xa9059cbb"},
		{"balanceOf(address)", "0x70a08231"},
		{"approve(address,uint256)", "0x095ea7b3"},
		{"foo(uint256,address)", "0xa68b44f8"},
		{"callReinforcements1()", "0x972aa689"},
		{"callReinforcements2()", "0x501e2751"},
		{"callReinforcements3()", "0x32ce1a78"},
		{"callReinforcements4()", "0x93f41d8a"},
		{"f((uint256,address)[],bytes32)", "0x5143f639"},
	}

	t.Log("Given the need to compute function selectors.")
	{
		for testID, tst := range tt {
			t.Logf("\tTest %d:\tWhen handling %s.", testID, tst.signature)
			{
				sel := selector.Compute(tst.signature)
				if sel.String() != tst.selector {
					t.Fatalf("\t%s\tTest %d:\tShould get the right selector: got %s, exp %s", failed, testID, sel, tst.selector)
				}
				t.Logf("\t%s\tTest %d:\tShould get the right selector.", success, testID)

				if selector.Compute(tst.signature) != sel {
					t.Fatalf("\t%s\tTest %d:\tShould get the same selector twice.", failed, testID)
				}
				t.Logf("\t%s\tTest %d:\tShould get the same selector twice.", success, testID)

				parsed, err := selector.Parse(tst.selector)
				if err != nil {
					t.Fatalf("\t%s\tTest %d:\tShould be able to parse the selector: %s", failed, testID, err)
				}

				if parsed != sel {
					t.Fatalf("\t%s\tTest %d:\tShould parse back the same selector: %s", failed, testID, parsed)
				}
				t.Logf("\t%s\tTest %d:\tShould parse back the same selector.", success, testID)
			}
		}
	}
}

func TestFromSignature(t *testing.T) {
	t.Log("Given the need to compute a selector from a declaration.")
	{
		t.Logf("\tTest 0:\tWhen handling a declaration with parameter names.")
		{
			sel, canonical, err := selector.FromSignature("foo(uint256 amount, address recipient)")
			if err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould be able to compute the selector: %s", failed, err)
			}
			t.Logf("\t%s\tTest 0:\tShould be able to compute the selector.", success)

			if canonical != "foo(uint256,address)" {
				t.Fatalf("\t%s\tTest 0:\tShould get back the canonical form: %s", failed, canonical)
			}
			t.Logf("\t%s\tTest 0:\tShould get back the canonical form.", success)

			if sel != selector.Compute("foo(uint256,address)") {
				t.Fatalf("\t%s\tTest 0:\tShould hash the canonical form: %s", failed, sel)
			}
			t.Logf("\t%s\tTest 0:\tShould hash the canonical form.", success)
		}

		t.Logf("\tTest 1:\tWhen reading a selector from calldata.")
		{
			data := []byte{0xa9, 0x05, 0x9c, 0xbb, 0x00, 0x01}
			sel, err := selector.FromCalldata(data)
			if err != nil {
				t.Fatalf("\t%s\tTest 1:\tShould be able to read the selector: %s", failed, err)
			}

			if sel != selector.Compute("transfer(address,uint256)") {
				t.Fatalf("\t%s\tTest 1:\tShould read the transfer selector: %s", failed, sel)
			}
			t.Logf("\t%s\tTest 1:\tShould read the transfer selector.", success)

			if _, err := selector.FromCalldata(data[:3]); err == nil {
				t.Fatalf("\t%s\tTest 1:\tShould reject short calldata.", failed)
			}
			t.Logf("\t%s\tTest 1:\tShould reject short calldata.", success)
		}

		t.Logf("\tTest 2:\tWhen parsing bad selector text.")
		{
			for _, s := range []string{"a9059cbb", "0xa9059c", "0xa9059cbb00", "0xzz059cbb"} {
				if _, err := selector.Parse(s); err == nil {
					t.Fatalf("\t%s\tTest 2:\tShould reject %q.", failed, s)
				}
			}
			t.Logf("\t%s\tTest 2:\tShould reject bad selector text.", success)
		}
	}
}
