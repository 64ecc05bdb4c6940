package main

import (
	"crypto/rand"
	"flag"
	"fmt"
	"io"

	"xdao.co/zkcred/keys"
	"xdao.co/zkcred/sigscheme"
)

func cmdKey(args []string, out io.Writer, errOut io.Writer) int {
	if len(args) == 0 {
		printKeyUsage(errOut)
		return 2
	}
	switch args[0] {
	case "init":
		return cmdKeyInit(args[1:], out, errOut)
	case "derive":
		return cmdKeyDerive(args[1:], out, errOut)
	case "list":
		return cmdKeyList(args[1:], out, errOut)
	case "sign":
		return cmdKeySign(args[1:], out, errOut)
	case "help", "-h", "--help":
		printKeyUsage(out)
		return 0
	default:
		fmt.Fprintf(errOut, "unknown key subcommand: %s\n\n", args[0])
		printKeyUsage(errOut)
		return 2
	}
}

func printKeyUsage(w io.Writer) {
	fmt.Fprintln(w, "usage: zkcred key <subcommand> ...")
	fmt.Fprintln(w, "subcommands: init, derive, list, sign")
	fmt.Fprintf(w, "signer schemes: %v\n", keys.SignerSchemes())
}

func openKeyStore(dir string, errOut io.Writer) (*keys.KeyStore, bool) {
	ks, err := keys.OpenKeyStore(dir)
	if err != nil {
		fmt.Fprintf(errOut, "keys: %v\n", err)
		return nil, false
	}
	return ks, true
}

func cmdKeyInit(args []string, out io.Writer, errOut io.Writer) int {
	fs := flag.NewFlagSet("key init", flag.ContinueOnError)
	fs.SetOutput(errOut)

	var name string
	var seedHex string
	var force bool
	var dir string
	fs.StringVar(&name, "name", "", "Issuer identity name")
	fs.StringVar(&seedHex, "seed-hex", "", "Optional root seed as 64 hex chars (for reproducible demos)")
	fs.BoolVar(&force, "force", false, "Overwrite existing key files")
	fs.StringVar(&dir, "dir", "", "Key store directory")

	if err := fs.Parse(args); err != nil {
		return 2
	}
	if name == "" {
		fmt.Fprintln(errOut, "missing --name")
		return 2
	}
	if err := keys.CheckKeyName(name); err != nil {
		fmt.Fprintf(errOut, "invalid --name: %v\n", err)
		return 2
	}

	var seed []byte
	if seedHex != "" {
		var err error
		if seed, err = keys.ParseSeedHex(seedHex); err != nil {
			fmt.Fprintf(errOut, "invalid --seed-hex: %v\n", err)
			return 2
		}
	} else {
		seed = make([]byte, keys.SeedSize)
		if _, err := rand.Read(seed); err != nil {
			fmt.Fprintf(errOut, "rand: %v\n", err)
			return 1
		}
	}

	ks, ok := openKeyStore(dir, errOut)
	if !ok {
		return 1
	}
	path, err := ks.InitializeRootKey(name, seed, force)
	if err != nil {
		fmt.Fprintf(errOut, "write key: %v\n", err)
		return 1
	}
	fmt.Fprintf(out, "Created root key: %s\n", name)
	fmt.Fprintf(out, "Stored at: %s\n", path)
	return 0
}

func cmdKeyDerive(args []string, out io.Writer, errOut io.Writer) int {
	fs := flag.NewFlagSet("key derive", flag.ContinueOnError)
	fs.SetOutput(errOut)

	var from string
	var scheme string
	var role string
	var force bool
	var dir string
	fs.StringVar(&from, "from", "", "Root key name")
	fs.StringVar(&scheme, "scheme", sigscheme.NameSecp256k1, "Signature scheme of the derived key")
	fs.StringVar(&role, "role", "", "Role identifier (e.g. kyc-desk)")
	fs.BoolVar(&force, "force", false, "Overwrite existing key files")
	fs.StringVar(&dir, "dir", "", "Key store directory")

	if err := fs.Parse(args); err != nil {
		return 2
	}
	if from == "" || role == "" {
		fmt.Fprintln(errOut, "missing --from or --role")
		return 2
	}
	if err := keys.CheckRole(role); err != nil {
		fmt.Fprintf(errOut, "invalid --role: %v\n", err)
		return 2
	}
	ks, ok := openKeyStore(dir, errOut)
	if !ok {
		return 1
	}
	signer, path, err := ks.DeriveRoleKey(from, scheme, role, force)
	if err != nil {
		fmt.Fprintf(errOut, "derive role key: %v\n", err)
		return 1
	}
	fmt.Fprintf(out, "Created %s role key: 0x%x\n", signer.Scheme(), signer.PublicKey())
	switch signer.Scheme() {
	case sigscheme.NameSecp256k1, sigscheme.NameEthereum:
		addr, err := sigscheme.Address(signer.PublicKey())
		if err != nil {
			fmt.Fprintf(errOut, "issuer address: %v\n", err)
			return 1
		}
		fmt.Fprintf(out, "Issuer address: %s\n", addr)
	}
	fmt.Fprintf(out, "Stored at: %s\n", path)
	return 0
}

func cmdKeyList(args []string, out io.Writer, errOut io.Writer) int {
	fs := flag.NewFlagSet("key list", flag.ContinueOnError)
	fs.SetOutput(errOut)
	var dir string
	fs.StringVar(&dir, "dir", "", "Key store directory")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	ks, ok := openKeyStore(dir, errOut)
	if !ok {
		return 1
	}
	entries, err := ks.ListKeys()
	if err != nil {
		fmt.Fprintf(errOut, "list keys: %v\n", err)
		return 1
	}
	for _, e := range entries {
		fmt.Fprintf(out, "%s\n", e.Identifier)
		for _, r := range e.Roles {
			fmt.Fprintf(out, "  - %s\n", r)
		}
	}
	return 0
}

// cmdKeySign signs an input's credential data and prints the input with
// signature and issuer_pubkey replaced.
func cmdKeySign(args []string, out io.Writer, errOut io.Writer) int {
	fs := flag.NewFlagSet("key sign", flag.ContinueOnError)
	fs.SetOutput(errOut)

	var name string
	var scheme string
	var role string
	var dir string
	fs.StringVar(&name, "name", "", "Issuer identity name")
	fs.StringVar(&scheme, "scheme", sigscheme.NameSecp256k1, "Signature scheme")
	fs.StringVar(&role, "role", "", "Role key to sign with (default: the root seed)")
	fs.StringVar(&dir, "dir", "", "Key store directory")

	if err := fs.Parse(args); err != nil {
		return 2
	}
	if name == "" || fs.NArg() != 1 {
		fmt.Fprintln(errOut, "usage: zkcred key sign --name <name> --scheme <s> [--role <role>] <input.json>")
		return 2
	}
	ks, ok := openKeyStore(dir, errOut)
	if !ok {
		return 1
	}
	signer, err := ks.LoadSigner(name, scheme, role)
	if err != nil {
		fmt.Fprintf(errOut, "load key: %v\n", err)
		return 1
	}
	in, err := readInput(fs.Arg(0), false)
	if err != nil {
		fmt.Fprintf(errOut, "read input: %v\n", err)
		return 1
	}
	sig, err := signer.Sign(in.CredentialData)
	if err != nil {
		fmt.Fprintf(errOut, "sign: %v\n", err)
		return 1
	}
	in.Signature = sig
	in.IssuerPubKey = signer.PublicKey()
	return writeJSON(out, errOut, in)
}
