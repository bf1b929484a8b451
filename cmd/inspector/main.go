// Command inspector decodes order extensions and signs orders offline.
//
//	inspector extension 0x...
//	inspector address <0x... | network:0x... | T...> [network]
//	inspector sign -chain 1 < order.json   (key from FUSIONGATE_SIGNER_KEY)
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/GoPolymarket/fusiongate/internal/chain"
	"github.com/GoPolymarket/fusiongate/internal/crosschain"
	"github.com/GoPolymarket/fusiongate/internal/fusion"
	"github.com/GoPolymarket/fusiongate/internal/limit"
	"github.com/GoPolymarket/fusiongate/internal/signer"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

func main() {
	if len(os.Args) < 2 {
		usage()
	}
	var (
		out any
		err error
	)
	switch os.Args[1] {
	case "extension":
		if len(os.Args) != 3 {
			usage()
		}
		out, err = inspectExtension(os.Args[2])
	case "address":
		if len(os.Args) < 3 || len(os.Args) > 4 {
			usage()
		}
		out, err = inspectAddress(os.Args[2], os.Args[3:]...)
	case "sign":
		out, err = runSign(os.Args[2:], os.Stdin)
	default:
		usage()
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(out)
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: inspector extension <hex> | inspector address <addr> [network] | inspector sign -chain <id> [-key <hex>] < order.json")
	os.Exit(2)
}

type extensionView struct {
	Kind            string                      `json:"kind"`
	Raw             map[string]hexutil.Bytes    `json:"raw"`
	Settlement      string                      `json:"settlement,omitempty"`
	Auction         *fusion.AuctionDetails      `json:"auction,omitempty"`
	PostInteraction *fusion.PostInteractionData `json:"postInteraction,omitempty"`
	Escrow          *escrowView                 `json:"escrow,omitempty"`
}

type escrowView struct {
	HashLock         string               `json:"hashLock"`
	DstChainID       chain.ID             `json:"dstChainId"`
	DstToken         string               `json:"dstToken"`
	SrcSafetyDeposit string               `json:"srcSafetyDeposit"`
	DstSafetyDeposit string               `json:"dstSafetyDeposit"`
	TimeLocks        crosschain.TimeLocks `json:"timeLocks"`
}

// inspectExtension tries the escrow layout first, then the plain auction one.
func inspectExtension(s string) (*extensionView, error) {
	ext, err := limit.DecodeExtensionHex(s)
	if err != nil {
		return nil, err
	}
	view := &extensionView{Kind: "limit", Raw: rawSegments(ext)}

	if escrow, err := crosschain.DecodeEscrowExtension(ext); err == nil {
		view.Kind = "escrow"
		view.fill(&escrow.Extension)
		view.Escrow = &escrowView{
			HashLock:         escrow.HashLock.String(),
			DstChainID:       escrow.DstChainID,
			DstToken:         escrow.DstToken.Hex(),
			SrcSafetyDeposit: escrow.SrcSafetyDeposit.Dec(),
			DstSafetyDeposit: escrow.DstSafetyDeposit.Dec(),
			TimeLocks:        escrow.TimeLocks,
		}
		return view, nil
	}
	if base, err := fusion.DecodeExtension(ext); err == nil {
		view.Kind = "fusion"
		view.fill(base)
	}
	return view, nil
}

func rawSegments(ext limit.Extension) map[string]hexutil.Bytes {
	out := make(map[string]hexutil.Bytes)
	for name, seg := range map[string][]byte{
		"makerAssetSuffix": ext.MakerAssetSuffix,
		"takerAssetSuffix": ext.TakerAssetSuffix,
		"makingAmountData": ext.MakingAmountData,
		"takingAmountData": ext.TakingAmountData,
		"predicate":        ext.Predicate,
		"makerPermit":      ext.MakerPermit,
		"preInteraction":   ext.PreInteraction,
		"postInteraction":  ext.PostInteraction,
		"customData":       ext.CustomData,
	} {
		if len(seg) > 0 {
			out[name] = seg
		}
	}
	return out
}

func (v *extensionView) fill(e *fusion.Extension) {
	v.Settlement = e.Settlement.Hex()
	v.Auction = &e.AuctionDetails
	v.PostInteraction = &e.PostInteraction
}

type addressView struct {
	Kind   string `json:"kind"`
	Hex    string `json:"hex"`
	Tagged string `json:"tagged,omitempty"`
	Tron   string `json:"tron"`
}

// inspectAddress shows an address in every form it is written in. An optional
// network tags a plain address.
func inspectAddress(s string, network ...string) (*addressView, error) {
	addr, err := chain.ParseAddress(s)
	if err != nil {
		return nil, err
	}
	raw := addr.Raw()
	view := &addressView{Hex: raw.Hex(), Tron: chain.TronAddress{Addr: raw}.String()}
	switch a := addr.(type) {
	case chain.EVMAddress:
		view.Kind = "evm"
	case chain.ChainAddress:
		view.Kind = "chain"
		view.Tagged = a.String()
	case chain.TronAddress:
		view.Kind = "tron"
	}
	if len(network) > 0 {
		id, err := chain.ParseNetwork(network[0])
		if err != nil {
			return nil, err
		}
		view.Tagged = chain.ChainAddress{Addr: raw, Chain: id}.String()
	}
	return view, nil
}

type signature struct {
	OrderHash string        `json:"orderHash"`
	Signer    string        `json:"signer"`
	Signature hexutil.Bytes `json:"signature"`
}

func runSign(args []string, in io.Reader) (*signature, error) {
	fs := flag.NewFlagSet("sign", flag.ContinueOnError)
	chainID := fs.Uint64("chain", uint64(chain.Ethereum), "source chain id")
	key := fs.String("key", os.Getenv("FUSIONGATE_SIGNER_KEY"), "maker private key (hex)")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	var v4 limit.OrderV4
	if err := json.NewDecoder(in).Decode(&v4); err != nil {
		return nil, fmt.Errorf("read order: %w", err)
	}
	order, err := v4.Order()
	if err != nil {
		return nil, err
	}
	s, err := signer.NewSigner(*key)
	if err != nil {
		return nil, err
	}
	id := chain.ID(*chainID)
	sig, err := s.SignOrder(order, id)
	if err != nil {
		return nil, err
	}
	return &signature{
		OrderHash: order.Hash(id).Hex(),
		Signer:    s.Address().Hex(),
		Signature: sig,
	}, nil
}
