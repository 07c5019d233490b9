package nameservice_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ardanlabs/dispatch/foundation/nameservice"
	"github.com/google/go-cmp/cmp"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

func TestNameService(t *testing.T) {
	root := t.TempDir()

	erc20 := `# ERC-20
transfer(address,uint)
function balanceOf(address owner) external view

approve(address,uint256)
`
	if err := os.WriteFile(filepath.Join(root, "erc20.sigs"), []byte(erc20), 0600); err != nil {
		t.Fatalf("\t%s\tShould be able to write the signature file: %s", failed, err)
	}

	if err := os.MkdirAll(filepath.Join(root, "more"), 0700); err != nil {
		t.Fatalf("\t%s\tShould be able to create a folder: %s", failed, err)
	}
	if err := os.WriteFile(filepath.Join(root, "more", "token.sigs"), []byte("transfer(address,uint256)\nname()\n"), 0600); err != nil {
		t.Fatalf("\t%s\tShould be able to write the signature file: %s", failed, err)
	}
	if err := os.WriteFile(filepath.Join(root, "README.md"), []byte("not(a,sig"), 0600); err != nil {
		t.Fatalf("\t%s\tShould be able to write the readme: %s", failed, err)
	}

	t.Log("Given the need to name selectors.")
	{
		t.Logf("\tTest 0:\tWhen loading a folder of signature files.")
		{
			ns, err := nameservice.New(root)
			if err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould be able to load the folder: %s", failed, err)
			}
			t.Logf("\t%s\tTest 0:\tShould be able to load the folder.", success)

			if ns.Len() != 4 {
				t.Fatalf("\t%s\tTest 0:\tShould know 4 selectors: %d", failed, ns.Len())
			}
			t.Logf("\t%s\tTest 0:\tShould know 4 selectors.", success)

			if diff := cmp.Diff([]string{"transfer(address,uint256)"}, ns.Lookup(0xa9059cbb)); diff != "" {
				t.Fatalf("\t%s\tTest 0:\tShould keep one name for a repeated signature:\n%s", failed, diff)
			}
			t.Logf("\t%s\tTest 0:\tShould keep one name for a repeated signature.", success)

			if diff := cmp.Diff([]string{"balanceOf(address)"}, ns.Lookup(0x70a08231)); diff != "" {
				t.Fatalf("\t%s\tTest 0:\tShould canonicalize the signature:\n%s", failed, diff)
			}
			t.Logf("\t%s\tTest 0:\tShould canonicalize the signature.", success)

			if names := ns.Lookup(0x12345678); names != nil {
				t.Fatalf("\t%s\tTest 0:\tShould not name an unknown selector: %v", failed, names)
			}
			t.Logf("\t%s\tTest 0:\tShould not name an unknown selector.", success)
		}

		t.Logf("\tTest 1:\tWhen a signature file holds a malformed line.")
		{
			bad := t.TempDir()
			if err := os.WriteFile(filepath.Join(bad, "bad.sigs"), []byte("name()\ntransfer(address\n"), 0600); err != nil {
				t.Fatalf("\t%s\tTest 1:\tShould be able to write the signature file: %s", failed, err)
			}

			if _, err := nameservice.New(bad); err == nil {
				t.Fatalf("\t%s\tTest 1:\tShould get an error.", failed)
			}
			t.Logf("\t%s\tTest 1:\tShould get an error.", success)
		}

		t.Logf("\tTest 2:\tWhen no folder is configured.")
		{
			ns, err := nameservice.New("")
			if err != nil || ns.Len() != 0 {
				t.Fatalf("\t%s\tTest 2:\tShould get an empty name service: %v", failed, err)
			}
			t.Logf("\t%s\tTest 2:\tShould get an empty name service.", success)
		}
	}
}
