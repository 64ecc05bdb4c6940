// vector_gen writes the credential conformance vectors under testdata/.
//
//	go run ./internal/tools/vector_gen -dir testdata/conformance/credential/v1
package main

import (
	"encoding/hex"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"xdao.co/zkcred/cidutil"
	"xdao.co/zkcred/credential"
)

func write(dir, name string, b []byte) {
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, b, 0o644); err != nil {
		panic(err)
	}
	fmt.Println(path)
}

func main() {
	dir := flag.String("dir", filepath.Join("testdata", "conformance", "credential", "v1"), "output directory")
	now := flag.Uint64("now", 1767225600, "current unix time of the scenario")
	flag.Parse()

	if err := os.MkdirAll(*dir, 0o755); err != nil {
		panic(err)
	}

	in, err := credential.SampleAccredited(*now)
	if err != nil {
		panic(err)
	}
	out, err := credential.Validate(in)
	if err != nil {
		panic(err)
	}
	encoded := out.Encode()
	id, err := cidutil.Commitment(encoded)
	if err != nil {
		panic(err)
	}
	js, err := json.MarshalIndent(in, "", "  ")
	if err != nil {
		panic(err)
	}

	write(*dir, "accredited_1.json", append(js, '\n'))
	write(*dir, "accredited_1.record.hex", []byte(hex.EncodeToString(credential.EncodeInput(in))+"\n"))
	write(*dir, "accredited_1.output.hex", []byte(hex.EncodeToString(encoded)+"\n"))
	write(*dir, "accredited_1.hash", []byte(hex.EncodeToString(out.CredentialHash[:])+"\n"))
	write(*dir, "accredited_1.cid", []byte(id.String()+"\n"))
}
