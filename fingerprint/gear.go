// Copyright 2025 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package fingerprint

// Gear returns the pseudorandom value assigned to b. The rolling hash used for
// content-defined sampling shifts its accumulator and adds Gear(b) for every
// input byte, so the low bits of the accumulator only depend on a short
// window of recent bytes.
func Gear(b byte) uint64 {
	return gearTable[b]
}

// gearTable holds one independent 64-bit constant per byte value. The values
// were produced by a splitmix64 generator and are part of the fingerprint
// definition: changing any of them changes every super-feature.
var gearTable = [256]uint64{
	0x0801bf88494cd3c3, 0xbc888666865c4d22, 0xf9269dc6537561ee, 0x685003dbf55f67d8,
	0x1f9f51a3f30c2c10, 0x76a339bbcb123a6d, 0xccc4270cc7102835, 0xa3948c5f7e79f85f,
	0xf849ac518fcdd596, 0x21a295120762172d, 0xed23fb29463c7a26, 0x72f7a59c0d5168cc,
	0x27d7ec08e7eac2f7, 0x7131d1ef398222b3, 0x1676cf2fe2c9b707, 0x5bf3ea77ef6bb5ed,
	0xbd8b38dd926eea03, 0xfa5e295e25ab9aa0, 0xa7b2dec75ce4c1ed, 0xa6fba614c15fedd2,
	0x3989db04d418cecf, 0x8d200e35d5c2366e, 0x57a6ba37897e79f6, 0x550733a0acac7f26,
	0xa0eb75f3a17bf1b7, 0x1a493c8df711e5ad, 0x25e7316de0f743e7, 0x4c44d0cde0423d8d,
	0x351822743900bca6, 0xc108d6af3bb4c4cf, 0xff32ec10d345697e, 0x682888aed2c925af,
	0xc26165f4263edcc9, 0xbf2be49e4698a63f, 0xfa1a6d685e9f8f5a, 0x4b69b50dcdd992ad,
	0x9594144e48f19a20, 0x83609bc375e6b378, 0xe644a10d8ead618f, 0xe9edb9b987f4909b,
	0xfd574fdd9e50c0cc, 0x40f72585653cdceb, 0x19bf96a7324533ce, 0x49bf6523a08e3461,
	0x57e8fafb1d8c1975, 0xd95b69d91d31725b, 0xbc94af0781d2bfc5, 0x7b0a65a5558ccfa5,
	0x803b166a06c534eb, 0x3ca4f4d70600bfbd, 0x84845570c2c5c1d5, 0xe3463d7e15eefe8e,
	0xbe8b16d7117a0276, 0x5b4583bb14ab8224, 0x3ba16e89b7ded94e, 0x1da72dc51b5f5921,
	0xa8b9024494ee5392, 0x8f7ffeb3e8274bb7, 0x647d87caf395d71b, 0x9f66b2eb89c18e0a,
	0x54465c79d74bfeec, 0x08844bae89eba4cd, 0xb3cfdd1bb1daf930, 0x0bea5478682a8150,
	0xba8ef3eb9c668a03, 0xe4b4a6c293067501, 0xca594f9a9b96524a, 0xb8b691e4ad085d92,
	0xc6aaea111df94447, 0xfd06c2d22172de68, 0x4bae1e1e3c5f4a13, 0x2858781fcbbbbbdb,
	0xa187966e30c5e0c2, 0xb4a937bdc5ef4ac7, 0xbb4e2e8cff0e815a, 0x7d5ebd7af20eb8bd,
	0x453af3b253d5cbbb, 0x9be88e9c4096c0de, 0xa350f44aa8d0be8e, 0x516beb7982c23420,
	0x59e7edb4f586f349, 0x125a447a0726fa65, 0xc23c27ed9314ab62, 0xe558470b5daf51b6,
	0x6460fdc59d107e63, 0x49a6af73e45900c2, 0x42c8c63b87a820a7, 0x8778582abf3bc7ad,
	0xcedc6ba84cc8e7d8, 0x492c0b9fb453c420, 0x429fb9ca080f0ca0, 0x51230ff3450ecf68,
	0xf0cba35f544fb918, 0x59a17b653cca70b2, 0x7fbcb84b7e69c1a5, 0x63b15ff134c0ef12,
	0xf2d4222929b7e7b8, 0x816561e1339d4cfa, 0xe61b3c037aa64491, 0x4eb4038ff0bfe90c,
	0xbd1b53bf779533c8, 0xcfde5562e5ab4231, 0x610dcc29c9fac7cb, 0x0ae32f34bd8be94e,
	0xebfa45192c0da020, 0x2ee8416800e2bd0d, 0x099a5192399a6f78, 0x54a525e604ba1248,
	0xa442bd8eaf7790b8, 0x6ff9222b0f3e20d3, 0x6a71573bf97dfddd, 0x31da453776cde450,
	0x68d17e95f646ff3a, 0x63d7eca9a52951ae, 0xcf0fe126316b15f2, 0x9a7644f6a4579ce6,
	0x730a81c0c482c816, 0x9ec27665517b8de8, 0x28b8c12dc8db760f, 0xce6a09a9df6f469b,
	0xfb9c49f532794e0a, 0x6482d04fb7afa122, 0x52027c8980987c2a, 0x15cf61b23fbf2b1b,
	0x8059ad1b70737383, 0x2da99379e3f82459, 0x89baadb8245dcdd5, 0xc4b427ca2b3f43af,
	0x38e42282d57dbe29, 0x7372848700e9e7a4, 0x1069dd307cd7dfa6, 0x5f2761f67b50e83e,
	0x13981c70025bf9be, 0xf519814a2c5c510a, 0x62040828eccf5421, 0x0a3b58c547cd22b3,
	0x973723ee9e0ba7af, 0x02c1467170fc5bf5, 0x4f69edc062f16935, 0xbace6743f78dcfa8,
	0xd7de55db03439da0, 0xdf28581b4a28b5ca, 0xd6c88e95e808cf6f, 0x5a10e2d5242c4787,
	0x637a60ba6ba3c5ad, 0xf181df9ca47cd313, 0xa5de126b34e86ea5, 0x78395dbb71d1ad8e,
	0x48a6cbdad44f8a4e, 0x3df2c1136c9a4189, 0x98527bb338c88afd, 0xa42aa16def02b3f6,
	0x7c001462762e1f0a, 0xa874bcf755338081, 0x048ccfa6a11ac1cb, 0x9342606c4c239341,
	0xe4b68d0faccc8b36, 0x528a02a08f82b95a, 0xb82a238f32555652, 0x7fce95ba631f5314,
	0x6a0235ecca2fc10d, 0xf00fafb06e87a988, 0x4f2ff4ce79119dc0, 0xcae0dfeac911206a,
	0xa4e47f4367aac749, 0xf2f603fa095caef7, 0x8d38ceb5abf5023b, 0x34ca66586540b9b1,
	0xd49c6be829037881, 0x5e89544c4dc3de19, 0xec0de50560824a0f, 0x38edfc022a65874f,
	0xd1eef683225469ad, 0xfefb4883720eb2c9, 0x7c345c32830adeec, 0x92e1b9838b4d850c,
	0x35fa5b45c5db77c0, 0x94cd5b315d0c2ee3, 0xc8b3be487eda631d, 0x329aa0995913669b,
	0x1f9d16cb8c2344fe, 0xce753f18fb41d521, 0x52854ec30ba8b2af, 0x43eb5c44d722fb0a,
	0xb6727af26e194dd5, 0x5de949d4f8a329bc, 0xcfc2ef4c06d704b8, 0x392ae272f96357d6,
	0x50cb484774f4d38c, 0xa9bebbaf1163c7a4, 0x31eabeb8dbcd4867, 0xb1501c1067c4471d,
	0x0bb922ca40707d6f, 0xbc3d71b3a98796f0, 0xcb4bcac382296bf1, 0x8dfbdc5d98ca03fa,
	0x31fe9fb0a487117c, 0x9497596034694537, 0x94c20ed81ad1c309, 0xf65c739516a40d8b,
	0x0c56135d3ad0a379, 0x34216c33bef40712, 0x2d79197d0681543f, 0x9d7c09f6ed5993c0,
	0x5c9b6afdbd2269bf, 0xc68c1292cc127376, 0x1badf36d29f221e6, 0xe2c6084c113499c6,
	0xb561d90075dbe9da, 0x6130db4397ced4e5, 0x2d7ed7e5644c64f4, 0x22898a34be9bf80f,
	0x53a760682b7c04d0, 0xf6fe4d32d6673813, 0x415d494fb0e9dde7, 0x2c7f8120a9b64514,
	0xa9b315804a338996, 0xa685794ccb793fce, 0x915e70d66bee6bab, 0xf5c20e8fc12f8e5d,
	0x99f18ea5d77732b5, 0x36f3ac54fdcdd9ac, 0xbd83577590b5daf4, 0xfcd3c82cca5a026c,
	0x67ee82ab32e6816e, 0x0ba5e5b2ef0e8284, 0xd73a81db1b6b3c67, 0xf049987472a5130e,
	0x863fc069f986f8af, 0x39490b51df827caa, 0x4b8c79b39857206e, 0x2d7d57c375eb2e47,
	0x71260d9cde6d6977, 0x1b9a89dc6bc60060, 0x8c783127007fcd62, 0xea90f8c71e5c5669,
	0x6a27fb6bbed3d313, 0x9d7d17b2db026bac, 0x47a15e140f196aeb, 0xc965bbfe4ed00f3a,
	0x416dbb8b716555e0, 0xe0900c577bf5b3eb, 0x6ebdfa35b7486d9a, 0x93a620df73f829e7,
	0x23d1c80faf07b400, 0x253569efc97062d5, 0x3b4572c2407dc2d1, 0xeeb7140926bad923,
	0x6be79e8fd5ea8438, 0x7ef050ef224fda73, 0x230e22f0b3e9b82f, 0x476ecfcb532607ed,
	0xc53874e81441262b, 0xa46b45a57036e881, 0x7efb3f9a7189a791, 0x6b703b274623256a,
}
