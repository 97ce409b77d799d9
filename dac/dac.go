// Package dac implements the delegatable anonymous credential scheme
// built on mercurial/msa and mercurial/msb (§4.4). A DAC instance owns an
// immutable root key pair under MS-B. Users generate one key pair in
// each scheme, convert them into pseudonyms, and are appended to a
// credential chain by whoever currently holds its last link. Every
// IssueNext call re-randomizes the entire chain in place (conceptually —
// this package returns a fresh *Chain rather than mutating the argument,
// per SPEC_FULL.md §5's note on the Go-idiomatic rendering of that
// contract), so neither the issuer, any delegator, nor the chain's own
// prior representation is recoverable from the result.
//
// A chain link's nym alternates shape every step — G2-valued (an MS-A
// public-key shape) at even indices, G1-valued (an MS-B public-key
// shape) at odd indices — and its signature alternates scheme to match.
// Go has no sum type, so Nym and Sig are small tagged structs: exactly
// the "tagged union" option SPEC_FULL.md §5 names as the
// Go-idiomatic dispatch mechanism for this alternation.
package dac

import (
	"fmt"

	"github.com/consensys/gnark-crypto/ecc/bn254"

	"github.com/mmsyan/mercurial-dac/mercurial/msa"
	"github.com/mmsyan/mercurial-dac/mercurial/msb"
	"github.com/mmsyan/mercurial-dac/pairing"
)

// Nym is a pseudonym at one link of a credential chain. Exactly one of G2
// (an MS-A public-key shape) or G1 (an MS-B public-key shape) is
// populated, selected by IsG2.
type Nym struct {
	IsG2 bool
	G2   []bn254.G2Affine
	G1   []bn254.G1Affine
}

// NymFromMSA wraps an MS-A-shaped (G2) public key as a chain nym.
func NymFromMSA(pk msa.PublicKey) Nym {
	return Nym{IsG2: true, G2: append([]bn254.G2Affine{}, pk...)}
}

// NymFromMSB wraps an MS-B-shaped (G1) public key as a chain nym.
func NymFromMSB(pk msb.PublicKey) Nym {
	return Nym{IsG2: false, G1: append([]bn254.G1Affine{}, pk...)}
}

func (n Nym) length() int {
	if n.IsG2 {
		return len(n.G2)
	}
	return len(n.G1)
}

// Sig is a signature at one link of a credential chain. Exactly one of
// MSA or MSB is populated, selected by IsMSB.
type Sig struct {
	IsMSB bool
	MSA   *msa.Signature
	MSB   *msb.Signature
}

// Chain is a credential chain: parallel nym and signature lists,
// len(Nyms) == len(Sigs), satisfying the invariants of §4.4: Nyms[0] is
// MS-A-shaped and signed by the DAC's root under MS-B; for i >= 0,
// Sigs[i+1] is an MS-A signature if i is even, an MS-B signature
// otherwise, by the secret key corresponding to Nyms[i] over the message
// Nyms[i+1].
type Chain struct {
	Nyms []Nym
	Sigs []Sig
}

// DelegatorKey carries the secret key a delegator passes to IssueNext.
// Exactly one of MSA or MSB is populated, selected by IsMSA, and it must
// match the scheme whose public keys share the group of the chain's
// current last nym — see IssueNext.
type DelegatorKey struct {
	IsMSA bool
	MSA   msa.SecretKey
	MSB   msb.SecretKey
}

// DelegatorFromMSA wraps an MS-A secret key for use as an IssueNext
// delegator key.
func DelegatorFromMSA(sk msa.SecretKey) DelegatorKey {
	return DelegatorKey{IsMSA: true, MSA: sk}
}

// DelegatorFromMSB wraps an MS-B secret key for use as an IssueNext
// delegator key.
func DelegatorFromMSB(sk msb.SecretKey) DelegatorKey {
	return DelegatorKey{IsMSA: false, MSB: sk}
}

// DAC is one instance of the delegatable anonymous credential scheme,
// fixed to a vector/chain-link length ell and an immutable MS-B root key
// pair generated at construction.
type DAC struct {
	ell int
	pk0 msb.PublicKey
	sk0 msb.SecretKey
}

// New establishes a fresh DAC instance of vector length ell, sampling a
// new root key pair under MS-B.
func New(ell int) (*DAC, error) {
	if ell <= 0 {
		return nil, fmt.Errorf("dac: New: ell must be positive, got %d", ell)
	}
	pk0, sk0, err := msb.KeyGen(ell)
	if err != nil {
		return nil, fmt.Errorf("dac: New: %w", err)
	}
	return &DAC{ell: ell, pk0: pk0, sk0: sk0}, nil
}

// RootPublicKey returns the DAC instance's root public key, the anchor
// every VerifyChain call ultimately checks against.
func (d *DAC) RootPublicKey() msb.PublicKey {
	return append(msb.PublicKey{}, d.pk0...)
}

// KeyGen samples a fresh "even" (MS-B) key pair and a fresh "odd" (MS-A)
// key pair for one user. Counting the root as position 0, even keys sit
// at even positions and odd keys at odd positions; since Chain.Nyms
// starts with the first user's link, odd (MS-A, G2) nyms are at even
// Chain.Nyms indices and even (MS-B, G1) nyms at odd ones.
func (d *DAC) KeyGen() (evenPK msb.PublicKey, evenSK msb.SecretKey, oddPK msa.PublicKey, oddSK msa.SecretKey, err error) {
	evenPK, evenSK, err = msb.KeyGen(d.ell)
	if err != nil {
		err = fmt.Errorf("dac: KeyGen: %w", err)
		return
	}
	oddPK, oddSK, err = msa.KeyGen(d.ell)
	if err != nil {
		err = fmt.Errorf("dac: KeyGen: %w", err)
		return
	}
	return
}

// NymGen converts an even/odd key pair into a pair of pseudonyms, each
// randomized by an independently sampled scalar, along with the secret
// keys converted by the same scalars.
func (d *DAC) NymGen(pkEven msb.PublicKey, skEven msb.SecretKey, pkOdd msa.PublicKey, skOdd msa.SecretKey) (nymEven Nym, skEvenPrime msb.SecretKey, nymOdd Nym, skOddPrime msa.SecretKey, err error) {
	if len(pkEven) != d.ell || len(skEven) != d.ell || len(pkOdd) != d.ell || len(skOdd) != d.ell {
		err = fmt.Errorf("dac: NymGen: all keys must have length %d", d.ell)
		return
	}

	rhoEven, err := msb.RandomZp()
	if err != nil {
		err = fmt.Errorf("dac: NymGen: %w", err)
		return
	}
	skEvenPrime = msb.ConvertSK(skEven, rhoEven)
	nymEven = NymFromMSB(msb.ConvertPK(pkEven, rhoEven))

	rhoOdd, err := msa.RandomZp()
	if err != nil {
		err = fmt.Errorf("dac: NymGen: %w", err)
		return
	}
	skOddPrime = msa.ConvertSK(skOdd, rhoOdd)
	nymOdd = NymFromMSA(msa.ConvertPK(pkOdd, rhoOdd))
	return
}

// IssueFirst has the DAC's root sign nym1, starting a one-link chain.
// nym1 must be MS-A-shaped (a G2 vector), since MS-B signs messages in G2.
func (d *DAC) IssueFirst(nym1 Nym) (*Chain, error) {
	if !nym1.IsG2 {
		return nil, fmt.Errorf("dac: IssueFirst: nym1 must be MS-A-shaped (G2-valued)")
	}
	if len(nym1.G2) != d.ell {
		return nil, fmt.Errorf("dac: IssueFirst: nym1 has length %d, want %d", len(nym1.G2), d.ell)
	}
	sig1, err := msb.Sign(d.sk0, msb.Message(nym1.G2))
	if err != nil {
		return nil, fmt.Errorf("dac: IssueFirst: %w", err)
	}
	return &Chain{
		Nyms: []Nym{nym1},
		Sigs: []Sig{{IsMSB: true, MSB: sig1}},
	}, nil
}

// IssueNext appends newNym to chain, signed by skDelegator (the secret
// key corresponding to the chain's current last nym, in the scheme whose
// public-key group matches that nym), and re-randomizes every existing
// link so that no prior representation survives. The argument chain is
// not reused; callers must treat it as consumed and use only the
// returned chain.
func (d *DAC) IssueNext(chain *Chain, newNym Nym, skDelegator DelegatorKey) (*Chain, error) {
	if chain == nil {
		return nil, fmt.Errorf("dac: IssueNext: nil chain")
	}
	if len(chain.Nyms) != len(chain.Sigs) {
		return nil, fmt.Errorf("dac: IssueNext: chain has %d nyms but %d signatures", len(chain.Nyms), len(chain.Sigs))
	}
	if len(chain.Nyms) == 0 {
		return nil, fmt.Errorf("dac: IssueNext: chain is empty")
	}
	if newNym.length() != d.ell {
		return nil, fmt.Errorf("dac: IssueNext: newNym has length %d, want %d", newNym.length(), d.ell)
	}

	k := len(chain.Nyms) - 1 // index of the current last link

	nyms := append([]Nym{}, chain.Nyms...)
	sigs := append([]Sig{}, chain.Sigs...)

	rho, err := pairing.RandomZp()
	if err != nil {
		return nil, fmt.Errorf("dac: IssueNext: %w", err)
	}

	// Step 1: re-randomize the root link under MS-B.
	m0, sig0, err := msb.ChangeRep(d.pk0, msb.Message(nyms[0].G2), sigs[0].MSB, rho)
	if err != nil {
		return nil, fmt.Errorf("dac: IssueNext: re-randomizing root link: %w", err)
	}
	nyms[0] = Nym{IsG2: true, G2: []bn254.G2Affine(m0)}
	sigs[0] = Sig{IsMSB: true, MSB: sig0}

	// Steps 2a-2c: walk the rest of the chain, converting each signature
	// by the rho just applied to its predecessor, then changing
	// representation by a freshly sampled rho.
	for i := 0; i < k; i++ {
		if i%2 == 0 {
			pk := msa.PublicKey(nyms[i].G2)
			m := msa.Message(nyms[i+1].G1)
			sigTilde, err := msa.ConvertSig(pk, m, sigs[i+1].MSA, rho)
			if err != nil {
				return nil, fmt.Errorf("dac: IssueNext: converting link %d: %w", i+1, err)
			}
			rho, err = msa.RandomZp()
			if err != nil {
				return nil, fmt.Errorf("dac: IssueNext: %w", err)
			}
			mPrime, sigPrime, err := msa.ChangeRep(pk, m, sigTilde, rho)
			if err != nil {
				return nil, fmt.Errorf("dac: IssueNext: re-randomizing link %d: %w", i+1, err)
			}
			nyms[i+1] = Nym{IsG2: false, G1: []bn254.G1Affine(mPrime)}
			sigs[i+1] = Sig{IsMSB: false, MSA: sigPrime}
		} else {
			pk := msb.PublicKey(nyms[i].G1)
			m := msb.Message(nyms[i+1].G2)
			sigTilde, err := msb.ConvertSig(pk, m, sigs[i+1].MSB, rho)
			if err != nil {
				return nil, fmt.Errorf("dac: IssueNext: converting link %d: %w", i+1, err)
			}
			rho, err = msb.RandomZp()
			if err != nil {
				return nil, fmt.Errorf("dac: IssueNext: %w", err)
			}
			mPrime, sigPrime, err := msb.ChangeRep(pk, m, sigTilde, rho)
			if err != nil {
				return nil, fmt.Errorf("dac: IssueNext: re-randomizing link %d: %w", i+1, err)
			}
			nyms[i+1] = Nym{IsG2: true, G2: []bn254.G2Affine(mPrime)}
			sigs[i+1] = Sig{IsMSB: true, MSB: sigPrime}
		}
	}

	// Append the new link, signed under the scheme whose public-key
	// group is opposite to newNym's — equivalently, the scheme matching
	// the just-re-randomized nyms[k].
	nyms = append(nyms, newNym)
	useMSA := len(nyms)%2 == 0

	if useMSA != nyms[k].IsG2 {
		return nil, fmt.Errorf("dac: IssueNext: chain parity invariant violated at link %d", k)
	}
	if useMSA != skDelegator.IsMSA {
		return nil, fmt.Errorf("dac: IssueNext: delegator key scheme does not match the chain's current parity")
	}

	if useMSA {
		if newNym.IsG2 {
			return nil, fmt.Errorf("dac: IssueNext: newNym must be MS-B-shaped (G1-valued) at this position")
		}
		skConverted := msa.ConvertSK(skDelegator.MSA, rho)
		sig, err := msa.Sign(skConverted, msa.Message(newNym.G1))
		if err != nil {
			return nil, fmt.Errorf("dac: IssueNext: signing new link: %w", err)
		}
		sigs = append(sigs, Sig{IsMSB: false, MSA: sig})
	} else {
		if !newNym.IsG2 {
			return nil, fmt.Errorf("dac: IssueNext: newNym must be MS-A-shaped (G2-valued) at this position")
		}
		skConverted := msb.ConvertSK(skDelegator.MSB, rho)
		sig, err := msb.Sign(skConverted, msb.Message(newNym.G2))
		if err != nil {
			return nil, fmt.Errorf("dac: IssueNext: signing new link: %w", err)
		}
		sigs = append(sigs, Sig{IsMSB: true, MSB: sig})
	}

	return &Chain{Nyms: nyms, Sigs: sigs}, nil
}

// VerifyChain reports whether chain descends from the DAC's root: the
// root link verifies under MS-B, and every subsequent link i -> i+1
// verifies under MS-A (i even) or MS-B (i odd), treating Nyms[i] as the
// verifying key and Nyms[i+1] as the signed message.
func (d *DAC) VerifyChain(chain *Chain) (bool, error) {
	if chain == nil {
		return false, fmt.Errorf("dac: VerifyChain: nil chain")
	}
	nyms, sigs := chain.Nyms, chain.Sigs
	if len(nyms) != len(sigs) {
		return false, fmt.Errorf("dac: VerifyChain: chain has %d nyms but %d signatures", len(nyms), len(sigs))
	}
	if len(nyms) == 0 {
		return false, fmt.Errorf("dac: VerifyChain: chain is empty")
	}

	rootOK, err := msb.Verify(d.pk0, msb.Message(nyms[0].G2), sigs[0].MSB)
	if err != nil {
		return false, fmt.Errorf("dac: VerifyChain: root link: %w", err)
	}
	if !rootOK {
		return false, nil
	}

	for i := 0; i < len(nyms)-1; i++ {
		var ok bool
		if i%2 == 0 {
			ok, err = msa.Verify(msa.PublicKey(nyms[i].G2), msa.Message(nyms[i+1].G1), sigs[i+1].MSA)
		} else {
			ok, err = msb.Verify(msb.PublicKey(nyms[i].G1), msb.Message(nyms[i+1].G2), sigs[i+1].MSB)
		}
		if err != nil {
			return false, fmt.Errorf("dac: VerifyChain: link %d: %w", i, err)
		}
		if !ok {
			return false, nil
		}
	}
	return true, nil
}
