package main

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"xdao.co/zkcred/cidutil"
	"xdao.co/zkcred/credential"
	"xdao.co/zkcred/journal"
	"xdao.co/zkcred/journal/bundle"
	"xdao.co/zkcred/journal/localfs"
	"xdao.co/zkcred/sigscheme"
	"xdao.co/zkcred/zkcircuit"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, out io.Writer, errOut io.Writer) int {
	if len(args) == 0 {
		printUsage(errOut)
		return 2
	}

	switch args[0] {
	case "sample":
		return cmdSample(args[1:], out, errOut)
	case "validate":
		return cmdValidate(args[1:], out, errOut)
	case "decode":
		return cmdDecode(args[1:], out, errOut)
	case "hash":
		return cmdHash(args[1:], out, errOut)
	case "cid":
		return cmdCID(args[1:], out, errOut)
	case "journal":
		return cmdJournal(args[1:], out, errOut)
	case "key":
		return cmdKey(args[1:], out, errOut)
	case "setup":
		return cmdSetup(args[1:], out, errOut)
	case "prove":
		return cmdProve(args[1:], out, errOut)
	case "verify-proof":
		return cmdVerifyProof(args[1:], out, errOut)
	case "schemes":
		for _, name := range sigscheme.Names() {
			_, _ = fmt.Fprintln(out, name)
		}
		return 0
	case "help", "-h", "--help":
		printUsage(out)
		return 0
	default:
		fmt.Fprintf(errOut, "unknown command: %s\n\n", args[0])
		printUsage(errOut)
		return 2
	}
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, "zkcred: credential validation and commitment CLI")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  zkcred sample [--now <unix>]")
	fmt.Fprintln(w, "  zkcred validate [--scheme <s>] [--now <unix>] [--record] [--format hex|json|raw] [--journal <dir>] [--jobs <n>] <input>...")
	fmt.Fprintln(w, "  zkcred validate --diagnose [--scheme <s>] [--now <unix>] [--record] <input>...")
	fmt.Fprintln(w, "  zkcred decode <output>")
	fmt.Fprintln(w, "  zkcred hash <input.json>")
	fmt.Fprintln(w, "  zkcred cid <output>")
	fmt.Fprintln(w, "  zkcred journal get --dir <dir> <cid>")
	fmt.Fprintln(w, "  zkcred journal list --dir <dir> --subject <address>")
	fmt.Fprintln(w, "  zkcred journal export --dir <dir> --subject <address> --out <bundle.tar>")
	fmt.Fprintln(w, "  zkcred journal import --dir <dir> <bundle.tar>")
	fmt.Fprintln(w, "  zkcred key init --name <name> [--seed-hex <64hex>] [--force] [--dir <dir>]")
	fmt.Fprintln(w, "  zkcred key derive --from <name> --scheme <s> --role <role> [--force] [--dir <dir>]")
	fmt.Fprintln(w, "  zkcred key list [--dir <dir>]")
	fmt.Fprintln(w, "  zkcred key sign --name <name> --scheme <s> [--role <role>] [--dir <dir>] <input.json>")
	fmt.Fprintln(w, "  zkcred setup --pk <file> --vk <file>")
	fmt.Fprintln(w, "  zkcred prove [--scheme <s>] --pk <file> --proof <file> <input.json>")
	fmt.Fprintln(w, "  zkcred verify-proof --vk <file> --proof <file> --now <unix> <output>")
	fmt.Fprintln(w, "  zkcred schemes")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Notes:")
	fmt.Fprintln(w, "  - inputs are JSON with 0x-hex byte fields; --record reads the binary record form instead")
	fmt.Fprintln(w, "  - outputs are the 72-byte public output, as raw bytes or hex")
	fmt.Fprintln(w, "  - validate prints nothing on stdout when the credential is rejected")
	fmt.Fprintln(w, "  - keys live under ~/.xdao/zkcred/keys unless --dir is given")
	fmt.Fprintln(w, "  - verify-proof must use a VK from a setup the verifier trusts, not one supplied by the prover")
}

func cmdSample(args []string, out io.Writer, errOut io.Writer) int {
	fs := flag.NewFlagSet("sample", flag.ContinueOnError)
	fs.SetOutput(errOut)
	var now uint64
	fs.Uint64Var(&now, "now", 0, "Current unix time (default: wall clock)")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() != 0 {
		fmt.Fprintln(errOut, "usage: zkcred sample [--now <unix>]")
		return 2
	}
	if now == 0 {
		now = uint64(time.Now().Unix())
	}
	in, err := credential.SampleAccredited(now)
	if err != nil {
		fmt.Fprintf(errOut, "invalid --now: %v\n", err)
		return 2
	}
	return writeJSON(out, errOut, in)
}

func writeJSON(out io.Writer, errOut io.Writer, v interface{}) int {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fmt.Fprintf(errOut, "encode json: %v\n", err)
		return 1
	}
	_, _ = fmt.Fprintln(out, string(b))
	return 0
}

func readInput(path string, record bool) (credential.CredentialInput, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return credential.CredentialInput{}, err
	}
	if record {
		return credential.DecodeInput(b)
	}
	var in credential.CredentialInput
	if err := json.Unmarshal(b, &in); err != nil {
		return credential.CredentialInput{}, err
	}
	return in, nil
}

// readOutput accepts either the raw 72 bytes or their hex form. Content made
// only of hex digits is always read as hex.
func readOutput(path string) (credential.PublicOutput, []byte, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return credential.PublicOutput{}, nil, err
	}
	text := strings.TrimPrefix(strings.TrimSpace(string(b)), "0x")
	if isHex(text) {
		if b, err = hex.DecodeString(text); err != nil {
			return credential.PublicOutput{}, nil, err
		}
	}
	out, err := credential.DecodePublicOutput(b)
	if err != nil {
		return credential.PublicOutput{}, nil, err
	}
	return out, b, nil
}

func isHex(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9', r >= 'a' && r <= 'f', r >= 'A' && r <= 'F':
		default:
			return false
		}
	}
	return true
}

func printRejection(errOut io.Writer, err error) {
	var cerr *credential.Error
	if errors.As(err, &cerr) {
		fmt.Fprintf(errOut, "rejected: %s (%s): %s\n", cerr.Code, cerr.RuleID, cerr.Message)
		return
	}
	fmt.Fprintf(errOut, "rejected: %v\n", err)
}

func cmdValidate(args []string, out io.Writer, errOut io.Writer) int {
	fs := flag.NewFlagSet("validate", flag.ContinueOnError)
	fs.SetOutput(errOut)

	var scheme string
	var now uint64
	var record bool
	var format string
	var journalDir string
	var jobs int
	var diagnose bool
	fs.StringVar(&scheme, "scheme", sigscheme.NameStructural, "Signature scheme (see 'zkcred schemes')")
	fs.Uint64Var(&now, "now", 0, "Override the input's current_time")
	fs.BoolVar(&record, "record", false, "Input files are binary records, not JSON")
	fs.StringVar(&format, "format", "hex", "Output format: hex, json or raw")
	fs.StringVar(&journalDir, "journal", "", "Commit outputs to a localfs journal at this directory")
	fs.IntVar(&jobs, "jobs", 0, "Maximum parallel validations (0: one per input)")
	fs.BoolVar(&diagnose, "diagnose", false, "Report every violated rule instead of producing outputs")

	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() == 0 {
		fmt.Fprintln(errOut, "usage: zkcred validate [flags] <input>...")
		return 2
	}
	switch format {
	case "hex", "json":
	case "raw":
		if fs.NArg() > 1 {
			fmt.Fprintln(errOut, "--format raw takes a single input")
			return 2
		}
	default:
		fmt.Fprintf(errOut, "invalid --format: %s\n", format)
		return 2
	}
	v, err := sigscheme.Validator(scheme)
	if err != nil {
		fmt.Fprintf(errOut, "invalid --scheme: %v\n", err)
		return 2
	}

	paths := fs.Args()
	inputs := make([]credential.CredentialInput, len(paths))
	for i, path := range paths {
		in, err := readInput(path, record)
		if err != nil {
			fmt.Fprintf(errOut, "read input %s: %v\n", path, err)
			return 1
		}
		if now != 0 {
			in.CurrentTime = now
		}
		inputs[i] = in
	}

	if diagnose {
		return diagnoseInputs(v, paths, inputs, out)
	}

	var j journal.Journal
	if journalDir != "" {
		if j, err = localfs.New(journalDir); err != nil {
			fmt.Fprintf(errOut, "journal: %v\n", err)
			return 1
		}
	}

	batch := len(paths) > 1
	results := v.ValidateBatch(context.Background(), inputs, jobs)
	var accepted []batchOutput
	code := 0
	for i, r := range results {
		if r.Err != nil {
			if batch {
				fmt.Fprintf(errOut, "%s: ", paths[i])
			}
			printRejection(errOut, r.Err)
			code = 1
			continue
		}
		encoded := r.Output.Encode()
		if j != nil {
			id, err := j.Commit(encoded)
			if err != nil {
				fmt.Fprintf(errOut, "commit: %v\n", err)
				return 1
			}
			fmt.Fprintf(errOut, "committed %s\n", id)
		}
		switch {
		case format == "raw":
			_, _ = out.Write(encoded)
		case format == "json":
			accepted = append(accepted, batchOutput{Input: paths[i], Output: r.Output})
		case batch:
			_, _ = fmt.Fprintf(out, "%s  %s\n", hex.EncodeToString(encoded), paths[i])
		default:
			_, _ = fmt.Fprintln(out, hex.EncodeToString(encoded))
		}
	}

	if format == "json" {
		switch {
		case batch:
			if rc := writeJSON(out, errOut, accepted); rc != 0 {
				return rc
			}
		case len(accepted) == 1:
			if rc := writeJSON(out, errOut, accepted[0].Output); rc != 0 {
				return rc
			}
		}
	}
	return code
}

type batchOutput struct {
	Input  string                  `json:"input"`
	Output credential.PublicOutput `json:"output"`
}

// diagnoseInputs prints every violated rule, one per line, and fails if any input has one.
func diagnoseInputs(v credential.Validator, paths []string, inputs []credential.CredentialInput, out io.Writer) int {
	code := 0
	for i, in := range inputs {
		prefix := ""
		if len(paths) > 1 {
			prefix = paths[i] + ": "
		}
		errs := v.Diagnose(in)
		if len(errs) == 0 {
			_, _ = fmt.Fprintf(out, "%sOK\n", prefix)
			continue
		}
		code = 1
		for _, err := range errs {
			var cerr *credential.Error
			if errors.As(err, &cerr) {
				_, _ = fmt.Fprintf(out, "%s%s (%s): %s\n", prefix, cerr.Code, cerr.RuleID, cerr.Message)
			} else {
				_, _ = fmt.Fprintf(out, "%s%v\n", prefix, err)
			}
		}
	}
	return code
}

func cmdDecode(args []string, out io.Writer, errOut io.Writer) int {
	fs := flag.NewFlagSet("decode", flag.ContinueOnError)
	fs.SetOutput(errOut)
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(errOut, "usage: zkcred decode <output>")
		return 2
	}
	result, _, err := readOutput(fs.Arg(0))
	if err != nil {
		fmt.Fprintf(errOut, "invalid output: %v\n", err)
		return 1
	}
	return writeJSON(out, errOut, result)
}

func cmdHash(args []string, out io.Writer, errOut io.Writer) int {
	fs := flag.NewFlagSet("hash", flag.ContinueOnError)
	fs.SetOutput(errOut)
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(errOut, "usage: zkcred hash <input.json>")
		return 2
	}
	in, err := readInput(fs.Arg(0), false)
	if err != nil {
		fmt.Fprintf(errOut, "read input: %v\n", err)
		return 1
	}
	sum := credential.ComputeCredentialHash(in.Subject, in.CredentialType, in.CredentialData, in.IssuerPubKey)
	_, _ = fmt.Fprintln(out, hex.EncodeToString(sum[:]))
	return 0
}

func cmdCID(args []string, out io.Writer, errOut io.Writer) int {
	fs := flag.NewFlagSet("cid", flag.ContinueOnError)
	fs.SetOutput(errOut)
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(errOut, "usage: zkcred cid <output>")
		return 2
	}
	_, encoded, err := readOutput(fs.Arg(0))
	if err != nil {
		fmt.Fprintf(errOut, "invalid output: %v\n", err)
		return 1
	}
	id, err := cidutil.Commitment(encoded)
	if err != nil {
		fmt.Fprintf(errOut, "cid: %v\n", err)
		return 1
	}
	_, _ = fmt.Fprintln(out, id)
	return 0
}

func cmdJournal(args []string, out io.Writer, errOut io.Writer) int {
	if len(args) == 0 {
		fmt.Fprintln(errOut, "usage: zkcred journal <subcommand> ...")
		fmt.Fprintln(errOut, "subcommands: get, list, export, import")
		return 2
	}
	fs := flag.NewFlagSet("journal "+args[0], flag.ContinueOnError)
	fs.SetOutput(errOut)
	var dir string
	var subject string
	var bundlePath string
	fs.StringVar(&dir, "dir", "", "Journal directory")
	switch args[0] {
	case "list":
		fs.StringVar(&subject, "subject", "", "Subject address")
	case "export":
		fs.StringVar(&subject, "subject", "", "Subject address")
		fs.StringVar(&bundlePath, "out", "", "Bundle file to write")
	}

	switch args[0] {
	case "get", "list", "export", "import":
	default:
		fmt.Fprintf(errOut, "unknown journal subcommand: %s\n", args[0])
		return 2
	}
	if err := fs.Parse(args[1:]); err != nil {
		return 2
	}
	if dir == "" {
		fmt.Fprintln(errOut, "missing --dir")
		return 2
	}
	j, err := localfs.New(dir)
	if err != nil {
		fmt.Fprintf(errOut, "journal: %v\n", err)
		return 1
	}

	switch args[0] {
	case "import":
		return journalImport(j, fs.Args(), out, errOut)
	case "get":
		if fs.NArg() != 1 {
			fmt.Fprintln(errOut, "usage: zkcred journal get --dir <dir> <cid>")
			return 2
		}
		id, err := cidutil.Parse(fs.Arg(0))
		if err != nil {
			fmt.Fprintf(errOut, "invalid cid: %v\n", err)
			return 2
		}
		result, err := journal.GetOutput(j, id)
		if err != nil {
			fmt.Fprintf(errOut, "get: %v\n", err)
			return 1
		}
		return writeJSON(out, errOut, result)
	}

	s, err := credential.ParseSubject(subject)
	if err != nil {
		fmt.Fprintf(errOut, "invalid --subject: %v\n", err)
		return 2
	}
	if args[0] == "export" {
		return journalExport(j, s, bundlePath, errOut)
	}
	ids, err := j.List(s)
	if err != nil {
		fmt.Fprintf(errOut, "list: %v\n", err)
		return 1
	}
	for _, id := range ids {
		_, _ = fmt.Fprintln(out, id)
	}
	return 0
}

func journalExport(j journal.Journal, subject credential.Subject, path string, errOut io.Writer) int {
	if path == "" {
		fmt.Fprintln(errOut, "missing --out")
		return 2
	}
	f, err := os.Create(path)
	if err != nil {
		fmt.Fprintf(errOut, "create --out: %v\n", err)
		return 1
	}
	if err := bundle.ExportSubject(f, j, subject, bundle.ExportOptions{IncludeIndex: true}); err != nil {
		_ = f.Close()
		fmt.Fprintf(errOut, "export: %v\n", err)
		return 1
	}
	if err := f.Close(); err != nil {
		fmt.Fprintf(errOut, "export: %v\n", err)
		return 1
	}
	return 0
}

func journalImport(j journal.Journal, args []string, out io.Writer, errOut io.Writer) int {
	if len(args) != 1 {
		fmt.Fprintln(errOut, "usage: zkcred journal import --dir <dir> <bundle.tar>")
		return 2
	}
	f, err := os.Open(args[0])
	if err != nil {
		fmt.Fprintf(errOut, "open bundle: %v\n", err)
		return 1
	}
	defer f.Close()
	ids, err := bundle.Import(f, j)
	if err != nil {
		fmt.Fprintf(errOut, "import: %v\n", err)
		return 1
	}
	for _, id := range ids {
		_, _ = fmt.Fprintln(out, id)
	}
	return 0
}

func cmdSetup(args []string, out io.Writer, errOut io.Writer) int {
	fs := flag.NewFlagSet("setup", flag.ContinueOnError)
	fs.SetOutput(errOut)
	var pkPath string
	var vkPath string
	fs.StringVar(&pkPath, "pk", "", "Write the proving key here")
	fs.StringVar(&vkPath, "vk", "", "Write the verifying key here")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() != 0 || pkPath == "" || vkPath == "" {
		fmt.Fprintln(errOut, "usage: zkcred setup --pk <file> --vk <file>")
		return 2
	}
	zk, err := zkcircuit.Setup()
	if err != nil {
		fmt.Fprintf(errOut, "setup: %v\n", err)
		return 1
	}
	if err := writeKeyFile(pkPath, zk.WriteProvingKey); err != nil {
		fmt.Fprintf(errOut, "write --pk: %v\n", err)
		return 1
	}
	if err := writeKeyFile(vkPath, zk.WriteVerifyingKey); err != nil {
		fmt.Fprintf(errOut, "write --vk: %v\n", err)
		return 1
	}
	sum, err := zkcircuit.VerifyingKeyHash(zk.VK)
	if err != nil {
		fmt.Fprintf(errOut, "hash vk: %v\n", err)
		return 1
	}
	_, _ = fmt.Fprintf(out, "vk sha256: %s\n", sum)
	return 0
}

func writeKeyFile(path string, write func(io.Writer) error) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

func cmdProve(args []string, out io.Writer, errOut io.Writer) int {
	fs := flag.NewFlagSet("prove", flag.ContinueOnError)
	fs.SetOutput(errOut)
	var scheme string
	var pkPath string
	var proofPath string
	fs.StringVar(&scheme, "scheme", sigscheme.NameStructural, "Signature scheme checked before proving")
	fs.StringVar(&pkPath, "pk", "", "Proving key from 'zkcred setup'")
	fs.StringVar(&proofPath, "proof", "", "Write the groth16 proof here")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() != 1 || pkPath == "" || proofPath == "" {
		fmt.Fprintln(errOut, "usage: zkcred prove [--scheme <s>] --pk <file> --proof <file> <input.json>")
		return 2
	}
	v, err := sigscheme.Validator(scheme)
	if err != nil {
		fmt.Fprintf(errOut, "invalid --scheme: %v\n", err)
		return 2
	}
	in, err := readInput(fs.Arg(0), false)
	if err != nil {
		fmt.Fprintf(errOut, "read input: %v\n", err)
		return 1
	}

	f, err := os.Open(pkPath)
	if err != nil {
		fmt.Fprintf(errOut, "open --pk: %v\n", err)
		return 1
	}
	zk, err := zkcircuit.LoadProver(f)
	_ = f.Close()
	if err != nil {
		fmt.Fprintf(errOut, "load --pk: %v\n", err)
		return 1
	}
	result, proof, err := zk.Prove(v, in)
	if err != nil {
		printRejection(errOut, err)
		return 1
	}
	proofBytes, err := zkcircuit.MarshalProof(proof)
	if err != nil {
		fmt.Fprintf(errOut, "encode proof: %v\n", err)
		return 1
	}
	if err := os.WriteFile(proofPath, proofBytes, 0o644); err != nil {
		fmt.Fprintf(errOut, "write --proof: %v\n", err)
		return 1
	}
	fmt.Fprintf(errOut, "proved at %d\n", in.CurrentTime)
	_, _ = fmt.Fprintln(out, hex.EncodeToString(result.Encode()))
	return 0
}

func cmdVerifyProof(args []string, out io.Writer, errOut io.Writer) int {
	fs := flag.NewFlagSet("verify-proof", flag.ContinueOnError)
	fs.SetOutput(errOut)
	var proofPath string
	var vkPath string
	var now uint64
	fs.StringVar(&proofPath, "proof", "", "Groth16 proof file")
	fs.StringVar(&vkPath, "vk", "", "Verifying key from a trusted 'zkcred setup'")
	fs.Uint64Var(&now, "now", 0, "Unix time the proof claims the credential was valid at")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() != 1 || proofPath == "" || vkPath == "" || now == 0 {
		fmt.Fprintln(errOut, "usage: zkcred verify-proof --vk <file> --proof <file> --now <unix> <output>")
		return 2
	}
	_, encoded, err := readOutput(fs.Arg(0))
	if err != nil {
		fmt.Fprintf(errOut, "invalid output: %v\n", err)
		return 1
	}
	proofBytes, err := os.ReadFile(proofPath)
	if err != nil {
		fmt.Fprintf(errOut, "read --proof: %v\n", err)
		return 1
	}
	vkBytes, err := os.ReadFile(vkPath)
	if err != nil {
		fmt.Fprintf(errOut, "read --vk: %v\n", err)
		return 1
	}
	if err := zkcircuit.VerifyWithKey(vkBytes, proofBytes, encoded, now); err != nil {
		fmt.Fprintf(errOut, "invalid proof: %v\n", err)
		return 1
	}
	_, _ = fmt.Fprintln(out, "OK")
	return 0
}
