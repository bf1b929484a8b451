package service

import (
	"context"
	"strings"

	"github.com/GoPolymarket/fusiongate/internal/chain"
	"github.com/GoPolymarket/fusiongate/internal/config"
	"github.com/GoPolymarket/fusiongate/internal/crosschain"
	"github.com/GoPolymarket/fusiongate/internal/fusion"
	"github.com/GoPolymarket/fusiongate/internal/limit"
	"github.com/GoPolymarket/fusiongate/internal/model"
	"github.com/GoPolymarket/fusiongate/internal/pkg/apperrors"
	"github.com/GoPolymarket/fusiongate/internal/pkg/logger"
	"github.com/GoPolymarket/fusiongate/internal/pkg/metrics"
	"github.com/GoPolymarket/fusiongate/internal/quote"
	"github.com/GoPolymarket/fusiongate/internal/signer"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

// ContractVerifier checks signatures of makers that are smart contracts.
type ContractVerifier interface {
	Verify(ctx context.Context, contract common.Address, hash common.Hash, signature []byte) (bool, error)
}

// OrderService prepares cross-chain orders, turns signed ones into relayer
// submissions and hands out secrets once escrows are deployed.
type OrderService struct {
	env       crosschain.Env
	secrets   SecretStore
	orders    OrderRepo
	opts      fusion.Options
	preset    *quote.PresetType
	delay     uint64
	verifiers map[chain.ID]ContractVerifier
}

type Option func(*OrderService)

// WithEnv replaces the clock and entropy source.
func WithEnv(env crosschain.Env) Option {
	return func(s *OrderService) { s.env = env }
}

func WithContractVerifier(id chain.ID, v ContractVerifier) Option {
	return func(s *OrderService) { s.verifiers[id] = v }
}

func NewOrderService(cfg *config.Config, secrets SecretStore, orders OrderRepo, opts ...Option) *OrderService {
	s := &OrderService{
		env:       crosschain.DefaultEnv(),
		secrets:   secrets,
		orders:    orders,
		opts:      cfg.OrderOptions(),
		preset:    cfg.DefaultPreset(),
		delay:     cfg.Order.DelayAuctionStartTimeBy,
		verifiers: make(map[chain.ID]ContractVerifier),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// PrepareOrder builds an order for client. Only client can later reveal its secrets.
func (s *OrderService) PrepareOrder(ctx context.Context, client string, req model.PrepareOrderRequest) (*model.PrepareOrderResponse, error) {
	if err := req.Request.Validate(); err != nil {
		return nil, s.fail(err)
	}
	override := req.Preset
	if override == nil {
		override = s.preset
	}
	preset, _, err := req.Quote.SelectPreset(override)
	if err != nil {
		return nil, s.fail(err)
	}

	dst, err := chain.AccountOn(req.DstAddress, req.Request.DstChain)
	if err != nil {
		return nil, s.fail(err)
	}

	set, err := crosschain.NewSecretSet(max(preset.SecretsCount, 1), s.env.Rand)
	if err != nil {
		return nil, s.fail(err)
	}

	opts := s.opts
	opts.Nonce = req.Nonce
	params := crosschain.OrderParams{
		DstAddress:              dst,
		HashLock:                set.HashLock(),
		Preset:                  override,
		Permit:                  req.Permit,
		DelayAuctionStartTimeBy: s.delay,
		Options:                 opts,
	}
	if req.Fee != nil {
		params.Fee = &crosschain.Fee{
			TakingFeeBps:      req.Fee.TakingFeeBps,
			TakingFeeReceiver: req.Fee.TakingFeeReceiver,
		}
	}
	prepared, err := crosschain.PrepareOrder(req.Request, &req.Quote, params, s.env)
	if err != nil {
		return nil, s.fail(err)
	}

	hashes := set.SecretHashes()
	// Secrets go first so a stored order always has them.
	if err := s.secrets.SaveSecrets(ctx, prepared.Hash, set.Secrets()); err != nil {
		return nil, s.fail(apperrors.New(apperrors.ErrInternal, "store secrets", err))
	}
	ext := prepared.Extension().Encode()
	rec := &model.OrderRecord{
		Hash:          prepared.Hash.Hex(),
		QuoteID:       prepared.QuoteID,
		SrcChainID:    uint64(prepared.SrcChainID),
		DstChainID:    uint64(prepared.DstChainID),
		Maker:         strings.ToLower(prepared.Order.Maker.Hex()),
		Preset:        string(prepared.Preset),
		Order:         prepared.Order.V4(),
		Extension:     hexutil.Encode(ext),
		SecretHashes:  hashStrings(hashes),
		MultipleFills: prepared.MultipleFills(),
		Status:        model.OrderStatusPrepared,
		Client:        client,
		CreatedAt:     s.env.Now().UTC(),
	}
	if err := s.orders.SaveOrder(ctx, rec); err != nil {
		return nil, s.fail(apperrors.New(apperrors.ErrInternal, "store order", err))
	}

	metrics.OrdersPrepared.WithLabelValues(prepared.SrcChainID.String(), string(prepared.Preset)).Inc()
	logger.FromContext(ctx).Info("order prepared",
		"order_hash", rec.Hash,
		"quote_id", rec.QuoteID,
		"src_chain", prepared.SrcChainID.String(),
		"dst_chain", prepared.DstChainID.String(),
		"preset", rec.Preset,
		"secrets", set.Len(),
	)

	return &model.PrepareOrderResponse{
		OrderHash:        prepared.Hash,
		QuoteID:          prepared.QuoteID,
		Preset:           prepared.Preset,
		TypedData:        prepared.TypedData(),
		Order:            rec.Order,
		Extension:        ext,
		SecretHashes:     hashes,
		MultipleFills:    rec.MultipleFills,
		AuctionStartTime: prepared.Order.AuctionDetails().StartTime,
		Deadline:         prepared.Order.MakerTraits.Expiration(),
	}, nil
}

// BuildSubmission checks the maker's signature over a prepared order and returns
// the payload for the relayer.
func (s *OrderService) BuildSubmission(ctx context.Context, orderHash common.Hash, signature []byte) (*crosschain.SubmissionPayload, error) {
	rec, err := s.orders.GetOrder(ctx, orderHash)
	if err != nil {
		return nil, s.fail(err)
	}
	order, _, err := restoreOrder(rec)
	if err != nil {
		return nil, s.fail(err)
	}
	src := chain.ID(rec.SrcChainID)
	if order.Hash(src) != orderHash {
		return nil, s.fail(apperrors.New(apperrors.ErrInternal, "stored order does not hash to "+orderHash.Hex(), nil))
	}
	if err := s.verifySignature(ctx, src, order.Maker, orderHash, signature); err != nil {
		return nil, s.fail(err)
	}

	hashes, err := parseHashes(rec.SecretHashes)
	if err != nil {
		return nil, s.fail(err)
	}
	payload, err := crosschain.NewSubmission(src, order, rec.QuoteID, signature, hashes)
	if err != nil {
		return nil, s.fail(err)
	}
	if err := s.orders.MarkSubmitted(ctx, orderHash, hexutil.Encode(signature)); err != nil {
		return nil, s.fail(apperrors.Wrap(err))
	}

	metrics.OrdersSubmitted.WithLabelValues(src.String()).Inc()
	logger.FromContext(ctx).Info("order submission built", "order_hash", rec.Hash, "multiple_fills", rec.MultipleFills)
	return payload, nil
}

// RevealSecret returns the secret for a fill whose escrows are deployed on both
// chains. Only the client that prepared the order may ask for it.
func (s *OrderService) RevealSecret(ctx context.Context, client string, orderHash common.Hash, fill model.ReadyToAcceptSecretFill) (*model.PublicSecret, error) {
	rec, err := s.orders.GetOrder(ctx, orderHash)
	if err != nil {
		return nil, s.fail(err)
	}
	if client == "" || rec.Client != client {
		logger.FromContext(ctx).Warn("secret reveal refused", "order_hash", rec.Hash, "client", client)
		return nil, s.fail(apperrors.New(apperrors.ErrAuthFailed, "order "+rec.Hash+" was prepared by another client", nil))
	}
	if rec.Status == model.OrderStatusPrepared {
		return nil, s.fail(apperrors.NewPrecondition("order " + rec.Hash + " has not been submitted"))
	}
	secrets, err := s.secrets.LoadSecrets(ctx, orderHash)
	if err != nil {
		return nil, s.fail(err)
	}
	set, err := crosschain.SecretSetFrom(secrets)
	if err != nil {
		return nil, s.fail(err)
	}
	if fill.Idx >= uint64(set.Len()) {
		return nil, s.fail(apperrors.NewValidation("idx", "no secret for fill index"))
	}
	idx := int(fill.Idx)
	secret, err := set.Secret(idx)
	if err != nil {
		return nil, s.fail(err)
	}
	proof, err := set.Proof(idx)
	if err != nil {
		return nil, s.fail(err)
	}

	order, escrow, err := restoreOrder(rec)
	if err != nil {
		return nil, s.fail(err)
	}
	hashlock := crosschain.HashSecret(secret).Hex()
	timelocks := escrow.TimeLocks.Build().Hex()
	dstMaker := order.Receiver
	if r := escrow.PostInteraction.CustomReceiver; r != nil {
		dstMaker = *r
	}

	metrics.SecretsRevealed.Inc()
	logger.FromContext(ctx).Info("secret revealed",
		"order_hash", rec.Hash,
		"idx", fill.Idx,
		"src_escrow_tx", fill.SrcEscrowDeployTxHash,
		"dst_escrow_tx", fill.DstEscrowDeployTxHash,
	)
	return &model.PublicSecret{
		Idx:    uint32(idx),
		Secret: secret.Hex(),
		Proof:  proof,
		SrcImmutables: model.ChainImmutables{
			OrderHash:     rec.Hash,
			Hashlock:      hashlock,
			Maker:         lowerHex(order.Maker),
			Token:         lowerHex(order.MakerAsset),
			Amount:        order.MakingAmount.Dec(),
			SafetyDeposit: escrow.SrcSafetyDeposit.Dec(),
			Timelocks:     timelocks,
		},
		DstImmutables: model.ChainImmutables{
			OrderHash:     rec.Hash,
			Hashlock:      hashlock,
			Maker:         lowerHex(dstMaker),
			Token:         lowerHex(escrow.DstToken),
			Amount:        order.TakingAmount.Dec(),
			SafetyDeposit: escrow.DstSafetyDeposit.Dec(),
			Timelocks:     timelocks,
		},
	}, nil
}

func (s *OrderService) GetOrder(ctx context.Context, orderHash common.Hash) (*model.OrderRecord, error) {
	return s.orders.GetOrder(ctx, orderHash)
}

// verifySignature accepts an ECDSA signature by the maker or, for contract
// makers on chains with an RPC endpoint, whatever the contract accepts.
func (s *OrderService) verifySignature(ctx context.Context, src chain.ID, maker common.Address, hash common.Hash, signature []byte) error {
	err := signer.VerifyHashSignature(hash, signature, maker)
	if err == nil {
		return nil
	}
	v, ok := s.verifiers[src]
	if !ok {
		return err
	}
	valid, verr := v.Verify(ctx, maker, hash, signature)
	if verr != nil {
		logger.LogError(ctx, verr, "contract signature check failed", "maker", maker.Hex())
		return err
	}
	if !valid {
		return err
	}
	return nil
}

func (s *OrderService) fail(err error) error {
	metrics.OrderFailures.WithLabelValues(string(apperrors.Wrap(err).Type)).Inc()
	return err
}

// restoreOrder rebuilds the signed order and its escrow parameters from a record.
func restoreOrder(rec *model.OrderRecord) (*limit.Order, *crosschain.EscrowExtension, error) {
	order, err := rec.Order.Order()
	if err != nil {
		return nil, nil, err
	}
	raw, err := hexutil.Decode(rec.Extension)
	if err != nil {
		return nil, nil, apperrors.NewDecode("extension", "invalid hex", err)
	}
	ext, err := limit.DecodeExtension(raw)
	if err != nil {
		return nil, nil, err
	}
	if err := order.Attach(ext); err != nil {
		return nil, nil, err
	}
	escrow, err := crosschain.DecodeEscrowExtension(ext)
	if err != nil {
		return nil, nil, err
	}
	return order, escrow, nil
}

func hashStrings(hashes []common.Hash) []string {
	out := make([]string, len(hashes))
	for i, h := range hashes {
		out[i] = h.Hex()
	}
	return out
}

func parseHashes(values []string) ([]common.Hash, error) {
	out := make([]common.Hash, len(values))
	for i, v := range values {
		b, err := hexutil.Decode(v)
		if err != nil || len(b) != common.HashLength {
			return nil, apperrors.NewDecode("secretHashes", "invalid hash "+v, err)
		}
		out[i] = common.BytesToHash(b)
	}
	return out, nil
}

func lowerHex(a common.Address) string {
	return strings.ToLower(a.Hex())
}
