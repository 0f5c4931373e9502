/*
Package bleichenbacher implements Bleichenbacher's adaptive chosen-ciphertext attack on RSA PKCS #1 v1.5 encryption [1]

# Overview

A server that decrypts RSA ciphertexts and reveals, by any means, whether the plaintext was correctly padded is a
padding oracle. Given such an oracle and the public key, Recover decrypts any ciphertext without the private key:

	m, err := bleichenbacher.Recover(ctx, oracle, c, pub)
	msg, err := bleichenbacher.ExtractMessage(m, pub.Size())

The oracle is anything satisfying [PaddingOracle]. For experiments, [KeyOracle] wraps a private key, and
[SplitOracle] wraps a key whose private exponent has been split into shards with [SplitD].

# How the attack works

Let k be the byte length of N and B = 2^(8(k-2)). A plaintext that starts 00 02 lies in [2B, 3B). Multiplying the
ciphertext by s^e multiplies the plaintext by s, so every multiplier s the oracle accepts tells us that m*s mod N
also lies in [2B, 3B). Each such s cuts down the set of intervals that may contain m:

  - Step 2a finds the first accepted s, starting from N/3B
  - Step 2b is used while several intervals remain, and simply tries the next s upward
  - Step 2c is used once a single interval [a, b] remains, and picks s so that the interval roughly halves
  - Step 3 intersects the intervals with the ranges allowed by the new s

The attack ends when the set holds a single integer, which is the padded plaintext.

If the target ciphertext is not itself conformant, [WithBlinding] first multiplies it by random s0^e until the
oracle accepts it, and divides s0 back out at the end.

# Cost

Step 2a dominates the query count. It has to find a multiplier that happens to land in [2B, 3B), and for a
[PrefixOnly] oracle roughly one in N/B of them do, where N/B is at least 2^8 and typically close to 2^16. Once
s is found, steps 2b, 2c and 3 roughly halve the remaining interval per iteration at a few queries each. A
256-bit modulus therefore typically needs tens of thousands of queries. A [Strict] oracle rejects most plaintexts
that start 00 02, which multiplies the step 2a cost: a 128-bit modulus can take over a million queries. Pass a
cancellable context to bound the run.

# Sources

	[1] http://archiv.infsec.ethz.ch/education/fs08/secsem/Bleichenbacher98.pdf
*/
package bleichenbacher
