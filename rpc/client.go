package rpc

import (
	"context"
	"time"

	"github.com/ipfs/go-cid"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"xdao.co/zkcred/cidutil"
	"xdao.co/zkcred/credential"
	"xdao.co/zkcred/journal"
)

// Client calls a remote Validator service.
type Client struct {
	cc     *grpc.ClientConn
	client ValidatorClient

	// Timeout applies per RPC when non-zero.
	Timeout time.Duration
}

type DialOptions struct {
	// MaxMsgBytes sets both send/recv max sizes when non-zero.
	MaxMsgBytes int
	// Timeout is copied to Client.Timeout.
	Timeout time.Duration
}

// Dial creates a client for target. The connection is established lazily.
func Dial(target string, opts DialOptions) (*Client, error) {
	dialOpts := []grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	}
	if opts.MaxMsgBytes > 0 {
		dialOpts = append(dialOpts,
			grpc.WithDefaultCallOptions(
				grpc.MaxCallRecvMsgSize(opts.MaxMsgBytes),
				grpc.MaxCallSendMsgSize(opts.MaxMsgBytes),
			),
		)
	}
	cc, err := grpc.NewClient(target, dialOpts...)
	if err != nil {
		return nil, err
	}
	return &Client{cc: cc, client: NewValidatorClient(cc), Timeout: opts.Timeout}, nil
}

func (c *Client) Close() error {
	if c == nil || c.cc == nil {
		return nil
	}
	return c.cc.Close()
}

// Validate sends one binary input record. The returned CID is cid.Undef when
// the server has no journal.
func (c *Client) Validate(ctx context.Context, record []byte) (credential.PublicOutput, cid.Cid, error) {
	ctx, cancel := c.ctx(ctx)
	defer cancel()

	var header metadata.MD
	reply, err := c.client.Validate(ctx, wrapperspb.Bytes(record), grpc.Header(&header))
	if err != nil {
		return credential.PublicOutput{}, cid.Undef, mapRPC(err)
	}
	encoded := reply.GetValue()
	out, err := credential.DecodePublicOutput(encoded)
	if err != nil {
		return credential.PublicOutput{}, cid.Undef, err
	}

	v := header.Get(CIDHeader)
	if len(v) == 0 {
		return out, cid.Undef, nil
	}
	id, err := cidutil.Parse(v[0])
	if err != nil {
		return credential.PublicOutput{}, cid.Undef, journal.ErrInvalidCID
	}
	if !cidutil.Matches(id, encoded) {
		return credential.PublicOutput{}, cid.Undef, journal.ErrCIDMismatch
	}
	return out, id, nil
}

// ValidateInput encodes in as a record and calls Validate.
func (c *Client) ValidateInput(ctx context.Context, in credential.CredentialInput) (credential.PublicOutput, cid.Cid, error) {
	return c.Validate(ctx, credential.EncodeInput(in))
}

// Commitment fetches a committed output and checks it against id.
func (c *Client) Commitment(ctx context.Context, id cid.Cid) (credential.PublicOutput, error) {
	if !id.Defined() {
		return credential.PublicOutput{}, journal.ErrInvalidCID
	}
	ctx, cancel := c.ctx(ctx)
	defer cancel()

	reply, err := c.client.Commitment(ctx, wrapperspb.String(id.String()))
	if err != nil {
		return credential.PublicOutput{}, mapRPC(err)
	}
	b := reply.GetValue()
	if !cidutil.Matches(id, b) {
		return credential.PublicOutput{}, journal.ErrCIDMismatch
	}
	return credential.DecodePublicOutput(b)
}

func (c *Client) ctx(parent context.Context) (context.Context, context.CancelFunc) {
	if parent == nil {
		parent = context.Background()
	}
	if c.Timeout <= 0 {
		return context.WithCancel(parent)
	}
	return context.WithTimeout(parent, c.Timeout)
}
